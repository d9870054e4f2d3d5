package client

import (
	"context"

	"github.com/akismet/akismetclient-go/config"
	"github.com/akismet/akismetclient-go/protocol"
)

// CheckCommentAsync checks a comment with a one-off client
func CheckCommentAsync(ctx context.Context, cfg *config.Config, blog *protocol.Blog, comment *protocol.Comment) (protocol.CheckResult, error) {
	client, err := NewClient(cfg, blog)
	if err != nil {
		return protocol.Ham, err
	}
	return client.CheckComment(ctx, comment)
}

// SubmitHamAsync submits a comment as ham with a one-off client
func SubmitHamAsync(ctx context.Context, cfg *config.Config, blog *protocol.Blog, comment *protocol.Comment) error {
	client, err := NewClient(cfg, blog)
	if err != nil {
		return err
	}
	return client.SubmitHam(ctx, comment)
}

// SubmitSpamAsync submits a comment as spam with a one-off client
func SubmitSpamAsync(ctx context.Context, cfg *config.Config, blog *protocol.Blog, comment *protocol.Comment) error {
	client, err := NewClient(cfg, blog)
	if err != nil {
		return err
	}
	return client.SubmitSpam(ctx, comment)
}

// VerifyKeyAsync verifies the configured API key with a one-off client
func VerifyKeyAsync(ctx context.Context, cfg *config.Config, blog *protocol.Blog) (bool, error) {
	client, err := NewClient(cfg, blog)
	if err != nil {
		return false, err
	}
	return client.VerifyKey(ctx)
}
