// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chingor13/bqjob/bigquery"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// settings are the connection settings shared by all commands. They are
// resolved from flags, BQJOB_* environment variables and the config file,
// in that order of precedence.
type settings struct {
	Project     string `mapstructure:"project"`
	Location    string `mapstructure:"location"`
	Credentials string `mapstructure:"credentials"`
	AccessToken string `mapstructure:"access_token"`
	Endpoint    string `mapstructure:"endpoint"`
	Verbose     bool   `mapstructure:"verbose"`
}

// bindFlags exposes every flag to viper under its snake_case name, which
// also makes it settable as BQJOB_<NAME>.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func loadSettings(v *viper.Viper, configFile string) (settings, error) {
	v.SetEnvPrefix("BQJOB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bqjob")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "bqjob"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decoding config: %w", err)
	}
	return s, nil
}

// parseJobRef splits a job reference of the form [PROJECT:][LOCATION.]JOB_ID.
// Job IDs themselves never contain ':' or '.'.
func parseJobRef(ref string) (project, location, id string, err error) {
	rest := ref
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		project, rest = rest[:i], rest[i+1:]
		if project == "" {
			return "", "", "", fmt.Errorf("invalid job reference %q: empty project", ref)
		}
	}
	if i := strings.Index(rest, "."); i >= 0 {
		location, rest = rest[:i], rest[i+1:]
	}
	if rest == "" {
		return "", "", "", fmt.Errorf("invalid job reference %q: empty job ID", ref)
	}
	return project, location, rest, nil
}

// clientOptions turns the settings into client options for the BigQuery and
// Cloud Storage clients.
func clientOptions(s settings) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case s.AccessToken != "":
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: s.AccessToken,
			TokenType:   "Bearer",
		})))
	case s.Credentials != "":
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, s.Credentials))
	}
	return opts
}

func newBigQueryClient(ctx context.Context, s settings) (*bigquery.Client, error) {
	opts := clientOptions(s)
	if s.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.Endpoint))
	}
	if s.Verbose {
		opts = append(opts, bigquery.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	c, err := bigquery.NewClient(ctx, s.Project, opts...)
	if err != nil {
		return nil, err
	}
	c.Location = s.Location
	return c, nil
}
