package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akismet/akismetclient-go/logger"
	"github.com/akismet/akismetclient-go/protocol"
	"github.com/akismet/akismetclient-go/server"
)

// commentFlags maps comment flags to Akismet wire fields
var commentFlags = []struct {
	name, field, usage string
}{
	{"content", "comment_content", "comment content"},
	{"author", "comment_author", "author name"},
	{"email", "comment_author_email", "author email"},
	{"author-url", "comment_author_url", "author home page"},
	{"ip", "user_ip", "author IP address"},
	{"agent", "user_agent", "author browser user agent"},
	{"role", "user_role", `author role ("administrator" is never spam)`},
	{"type", "comment_type", "comment type, e.g. comment, forum-post, signup"},
	{"permalink", "permalink", "URL of the commented entry"},
	{"referrer", "referrer", "HTTP referrer of the comment form"},
	{"date", "comment_date_gmt", "creation time, RFC 3339"},
	{"post-modified", "comment_post_modified_gmt", "modification time of the commented entry, RFC 3339"},
	{"recheck-reason", "recheck_reason", "why the comment is checked again"},
}

func addCommentFlags(cmd *cobra.Command) {
	for _, f := range commentFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().String("file", "", "read the comment as JSON wire fields from a file, - for stdin")
}

// readComment builds the comment from --file, then lets explicit flags override fields
func readComment(cmd *cobra.Command) (*protocol.Comment, error) {
	fields := make(map[string]any)

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		var r io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		if err := json.NewDecoder(r).Decode(&fields); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	for _, f := range commentFlags {
		if cmd.Flags().Changed(f.name) {
			v, _ := cmd.Flags().GetString(f.name)
			fields[f.field] = v
		}
	}
	return protocol.CommentFromFields(fields)
}

func (a *app) cmdCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a comment is spam",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comment, err := readComment(cmd)
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			result, err := c.CheckComment(cmd.Context(), comment)
			if err != nil {
				return err
			}
			if a.v.GetBool("json") {
				return a.printJSON(map[string]any{"result": result, "spam": result.IsSpam()})
			}
			_, err = fmt.Fprintln(a.out, result)
			return err
		},
	}
	addCommentFlags(cmd)
	return cmd
}

func (a *app) cmdSubmit(command protocol.AkismetCommand) *cobra.Command {
	short := "Report a comment wrongly flagged as spam"
	if command == protocol.SubmitSpam {
		short = "Report a spam comment that was not caught"
	}
	cmd := &cobra.Command{
		Use:   command.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comment, err := readComment(cmd)
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			if command == protocol.SubmitHam {
				err = c.SubmitHam(cmd.Context(), comment)
			} else {
				err = c.SubmitSpam(cmd.Context(), comment)
			}
			if err != nil {
				return err
			}
			if a.v.GetBool("json") {
				return a.printJSON(map[string]any{"submitted": command.String()})
			}
			_, err = fmt.Fprintln(a.out, protocol.SuccessfulSubmission)
			return err
		},
	}
	addCommentFlags(cmd)
	return cmd
}

func (a *app) cmdVerify() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			valid, err := c.VerifyKey(cmd.Context())
			if err != nil {
				return err
			}
			if a.v.GetBool("json") {
				return a.printJSON(map[string]any{"valid": valid})
			}
			status := "invalid"
			if valid {
				status = "valid"
			}
			_, err = fmt.Fprintln(a.out, status)
			return err
		},
	}
}

func (a *app) cmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP proxy exposing the Akismet API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blog, err := a.blog()
			if err != nil {
				return err
			}
			settings := server.DefaultSettings()
			settings.Addr, _ = cmd.Flags().GetString("addr")
			settings.CORSAllowedOrigin, _ = cmd.Flags().GetString("cors-origin")
			settings.MaxBodyBytes, _ = cmd.Flags().GetInt64("max-body")

			l := logger.SetupDefault(os.Stdout, logger.ParseLevel(a.v.GetString("log-level")))
			srv, err := server.New(a.config(), blog, settings, server.WithLogger(l))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("cors-origin", "", "origin allowed to call the proxy from a browser")
	cmd.Flags().Int64("max-body", 1<<20, "maximum request body size in bytes")
	return cmd
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

