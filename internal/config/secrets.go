// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSecretsDir is the directory of secret files read at startup.
const DefaultSecretsDir = ".secrets/"

// secretKeys maps secret file names to the config keys they fill when the
// key is not set anywhere else.
var secretKeys = map[string]string{
	"nlp-api-key": "nlp.api_key",
}

// secretEnv maps secret file names to environment variables read by the AWS
// SDK. Variables already set are left alone.
var secretEnv = map[string]string{
	"aws-access-key-id":     "AWS_ACCESS_KEY_ID",
	"aws-secret-access-key": "AWS_SECRET_ACCESS_KEY",
	"aws-session-token":     "AWS_SESSION_TOKEN",
}

// LoadSecrets reads all files in dir and returns a map of file name to
// trimmed contents. A missing directory is not an error. Unreadable files
// are reported to warn and skipped.
func LoadSecrets(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
