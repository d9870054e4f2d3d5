// Command akismet checks comments against Akismet from the command line and can run
// a local proxy for the Akismet API.
//
// Subcommands
//
//	check           check a comment, prints ham, spam or pervasive_spam
//	submit-ham      report a false positive
//	submit-spam     report missed spam
//	verify          verify the API key
//	serve           run the HTTP proxy
//
// Every global flag can also be set through an AKISMET_* environment variable
// (e.g. AKISMET_API_KEY, AKISMET_BLOG). A .env file in the working directory is loaded first.
//
// Run examples
//
//	akismet verify --api-key 123YourAPIKey --blog https://www.yourblog.com
//	akismet check --content "Buy now" --ip 10.0.0.1 --agent Mozilla/5.0 --test
//	akismet check --file comment.json --json
//	akismet serve --addr :8080 --cors-origin http://localhost:3000
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akismet/akismetclient-go/client"
	"github.com/akismet/akismetclient-go/config"
	"github.com/akismet/akismetclient-go/logger"
	"github.com/akismet/akismetclient-go/protocol"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands
type app struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:           "akismet",
		Short:         "Akismet comment spam CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("api-key", "", "Akismet API key")
	pf.String("blog", "", "front page URL of the site")
	pf.String("base-url", protocol.DefaultBaseURL, "Akismet API base URL")
	pf.String("charset", "", "character encoding of the submitted values")
	pf.StringSlice("lang", nil, "ISO 639-1 codes of the site languages")
	pf.Bool("test", false, "send requests in test mode")
	pf.Float64("timeout", 30, "request timeout in seconds, 0 for none")
	pf.String("user-agent", config.DefaultUserAgent(), "User-Agent sent to Akismet")
	pf.Bool("json", false, "emit JSON")
	pf.String("log-level", "info", "log level: debug, info, warn or error")

	a.v.SetEnvPrefix("AKISMET")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(pf); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.cmdCheck(),
		a.cmdSubmit(protocol.SubmitHam),
		a.cmdSubmit(protocol.SubmitSpam),
		a.cmdVerify(),
		a.cmdServe(),
	)
	return root
}

// config builds the client configuration from flags and environment
func (a *app) config() *config.Config {
	return config.NewConfig(a.v.GetString("api-key")).
		WithBaseURL(a.v.GetString("base-url")).
		WithTest(a.v.GetBool("test")).
		WithUserAgent(a.v.GetString("user-agent")).
		WithTimeout(a.v.GetFloat64("timeout"))
}

// blog builds the blog from flags and environment
func (a *app) blog() (*protocol.Blog, error) {
	blog := &protocol.Blog{}
	if raw := a.v.GetString("blog"); raw != "" {
		parsed, err := protocol.NewBlog(raw)
		if err != nil {
			return nil, err
		}
		blog = parsed
	}
	return blog.WithCharset(a.v.GetString("charset")).WithLanguages(splitList(a.v.GetStringSlice("lang"))...), nil
}

func (a *app) newClient() (*client.Client, error) {
	blog, err := a.blog()
	if err != nil {
		return nil, err
	}
	l := logger.Setup(os.Stderr, logger.ParseLevel(a.v.GetString("log-level")))
	return client.NewClient(a.config(), blog, client.WithLogger(l))
}

// splitList flattens comma separated entries; environment values arrive unsplit
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		out = append(out, strings.Split(item, ",")...)
	}
	return out
}
