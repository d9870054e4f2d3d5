// Package akismet_client provides an HTTP client for the Akismet comment spam service.
// It checks comments, reports missed spam and false positives, and verifies API keys.
//
// Example usage:
//
//	cfg := config.NewConfig("123YourAPIKey")
//	blog, _ := protocol.NewBlog("https://www.yourblog.com")
//	author := &protocol.Author{IPAddress: "192.168.123.456", UserAgent: "Mozilla/5.0"}
//	comment := protocol.NewComment("A user comment", author).WithType(protocol.TypeComment)
//
//	result, err := client.CheckCommentAsync(context.Background(), cfg, blog, comment)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Verdict: %s\n", result)
package akismet_client

import (
	"context"

	"github.com/akismet/akismetclient-go/client"
	"github.com/akismet/akismetclient-go/config"
	"github.com/akismet/akismetclient-go/protocol"
)

// Re-export commonly used types and functions
type (
	Config         = config.Config
	TLSSettings    = config.TLSSettings
	ProxyConfig    = config.ProxyConfig
	Author         = protocol.Author
	Blog           = protocol.Blog
	Comment        = protocol.Comment
	CommentType    = protocol.CommentType
	CheckResult    = protocol.CheckResult
	Usage          = protocol.Usage
	Client         = client.Client
	Option         = client.Option
	Observer       = client.Observer
	ObserverFuncs  = client.ObserverFuncs
	AkismetCommand = protocol.AkismetCommand
)

// Re-export constructors
var (
	NewConfig  = config.NewConfig
	NewBlog    = protocol.NewBlog
	NewComment = protocol.NewComment
	NewClient  = client.NewClient
)

// Re-export verdicts
const (
	Ham           = protocol.Ham
	Spam          = protocol.Spam
	PervasiveSpam = protocol.PervasiveSpam
)

// Re-export commands
const (
	CommentCheck = protocol.CommentCheck
	SubmitHam    = protocol.SubmitHam
	SubmitSpam   = protocol.SubmitSpam
	VerifyKey    = protocol.VerifyKey
)

// CheckCommentAsync checks a comment and returns the verdict.
//
// Example:
//
//	cfg := NewConfig("123YourAPIKey").WithTest(true)
//	blog, _ := NewBlog("https://www.yourblog.com")
//	comment := NewComment("Hello", &Author{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"})
//
//	result, err := CheckCommentAsync(context.Background(), cfg, blog, comment)
//	if err != nil {
//		return err
//	}
//
//	if result.IsSpam() {
//		fmt.Println("The comment is spam")
//	}
func CheckCommentAsync(ctx context.Context, cfg *Config, blog *Blog, comment *Comment) (CheckResult, error) {
	return client.CheckCommentAsync(ctx, cfg, blog, comment)
}

// SubmitHamAsync reports a comment that was wrongly flagged as spam.
func SubmitHamAsync(ctx context.Context, cfg *Config, blog *Blog, comment *Comment) error {
	return client.SubmitHamAsync(ctx, cfg, blog, comment)
}

// SubmitSpamAsync reports a spam comment that was not caught.
//
// Example:
//
//	err := SubmitSpamAsync(context.Background(), cfg, blog, comment)
//	if err != nil {
//		return err
//	}
func SubmitSpamAsync(ctx context.Context, cfg *Config, blog *Blog, comment *Comment) error {
	return client.SubmitSpamAsync(ctx, cfg, blog, comment)
}

// VerifyKeyAsync reports whether the configured API key is valid.
func VerifyKeyAsync(ctx context.Context, cfg *Config, blog *Blog) (bool, error) {
	return client.VerifyKeyAsync(ctx, cfg, blog)
}
