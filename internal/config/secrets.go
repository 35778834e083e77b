package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptMarker as a secret value asks for it on the terminal.
const PromptMarker = "-"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ResolveSecrets replaces every secret set to "-" with a value read from the
// terminal without echo. Prompts go to w.
func (c *Config) ResolveSecrets(w io.Writer) error {
	secrets := []struct {
		prompt string
		dst    *string
	}{
		{"Cloudflare API token", &c.APIToken},
		{"S3 access key id", &c.S3AccessKeyID},
		{"S3 secret access key", &c.S3SecretAccessKey},
	}

	for _, s := range secrets {
		if *s.dst != PromptMarker {
			continue
		}
		fmt.Fprintf(w, "%s: ", s.prompt)
		value, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return fmt.Errorf("read %s: %w", s.prompt, err)
		}
		*s.dst = strings.TrimSpace(string(value))
	}
	return nil
}
