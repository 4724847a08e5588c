package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/config"
	"github.com/maynagashev/brewtrack/internal/middleware"
	"github.com/maynagashev/brewtrack/internal/models"
	"github.com/maynagashev/brewtrack/internal/resolver"
)

// runCmd выполняет brewtrack с аргументами без чтения .env и возвращает stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, expected := range []string{"serve", "parse", "resolve", "export", "token"} {
		assert.Contains(t, names, expected)
	}
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, err := runCmd(t, "--log-level", "loud", "parse", "rona", "rona-1.0.0.all.bottle.tar.gz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "уровень логирования")
}

func TestParseCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected models.BottleIdentity
		wantErr  error
	}{
		{
			name:     "Обычная бутылка",
			args:     []string{"parse", "rona", "rona-2.17.7.arm64_sequoia.bottle.tar.gz"},
			expected: models.BottleIdentity{Project: "rona", Version: "2.17.7", Platform: "arm64_sequoia"},
		},
		{
			name:     "Номер пересборки",
			args:     []string{"parse", "rona", "rona-2.17.7.arm64_sequoia.bottle.2.tar.gz"},
			expected: models.BottleIdentity{Project: "rona", Version: "2.17.7", Platform: "arm64_sequoia", Rebuild: 2},
		},
		{
			name: "Дополнительная платформа из флага",
			args: []string{
				"parse", "--extra-platforms", "x86_64_freebsd", "rona", "rona-3.0.0.x86_64_freebsd.bottle.tar.gz",
			},
			expected: models.BottleIdentity{Project: "rona", Version: "3.0.0", Platform: "x86_64_freebsd"},
		},
		{
			name:    "Платформа без флага неизвестна",
			args:    []string{"parse", "rona", "rona-3.0.0.x86_64_freebsd.bottle.tar.gz"},
			wantErr: bottle.ErrUnrecognizedFilename,
		},
		{
			name:    "Неизвестная платформа",
			args:    []string{"parse", "rona", "rona-2.17.7.windows.bottle.tar.gz"},
			wantErr: bottle.ErrUnrecognizedFilename,
		},
		{
			name:    "Некорректный проект",
			args:    []string{"parse", "ro na", "ro na-1.0.0.all.bottle.tar.gz"},
			wantErr: bottle.ErrInvalidProject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvExtraPlatforms, "")

			out, err := runCmd(t, tt.args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var got models.BottleIdentity
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseCmd_ExtraPlatformsFromEnv(t *testing.T) {
	t.Setenv(config.EnvExtraPlatforms, "x86_64_freebsd, arm64_freebsd")

	out, err := runCmd(t, "parse", "rona", "rona-3.0.0.arm64_freebsd.bottle.tar.gz")

	require.NoError(t, err)
	assert.Contains(t, out, `"platform": "arm64_freebsd"`)
}

func TestParseCmd_WrongArgs(t *testing.T) {
	_, err := runCmd(t, "parse", "rona")

	require.Error(t, err)
}

func TestResolveCmd(t *testing.T) {
	t.Setenv(config.EnvProjectsFile, "")
	t.Setenv(config.EnvExtraPlatforms, "")

	t.Run("Проект по умолчанию", func(t *testing.T) {
		out, err := runCmd(t, "resolve", "rona", "rona-2.17.7.x86_64_linux.bottle.tar.gz")

		require.NoError(t, err)
		assert.Equal(t,
			"https://github.com/rona-rs/rona/releases/download/v2.17.7/rona-2.17.7.x86_64_linux.bottle.tar.gz\n",
			out)
	})

	t.Run("JSON-вывод", func(t *testing.T) {
		out, err := runCmd(t, "resolve", "--json", "clean-dev-dirs", "clean-dev-dirs-3.1.0.sonoma.bottle.1.tar.gz")

		require.NoError(t, err)
		var got resolvedBottle
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, 1, got.Rebuild)
		assert.Equal(t,
			"https://github.com/clean-dev-dirs/clean-dev-dirs/releases/download/v3.1.0/"+
				"clean-dev-dirs-3.1.0.sonoma.bottle.1.tar.gz",
			got.URL)
	})

	t.Run("Реестр из файла", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "projects.yaml")
		content := "projects:\n  my-tool:\n    release_base: https://downloads.example.com/my-tool\n    tag_prefix: \"\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		out, err := runCmd(t, "resolve", "--projects-file", path, "my-tool", "my-tool-1.0.0.sonoma.bottle.tar.gz")

		require.NoError(t, err)
		assert.Equal(t, "https://downloads.example.com/my-tool/1.0.0/my-tool-1.0.0.sonoma.bottle.tar.gz\n", out)
	})

	t.Run("Неизвестный проект", func(t *testing.T) {
		_, err := runCmd(t, "resolve", "ghost", "ghost-1.0.0.sonoma.bottle.tar.gz")

		require.ErrorIs(t, err, resolver.ErrUnknownProject)
	})
}

func TestTokenCmd(t *testing.T) {
	secret := "token-cmd-secret"

	t.Run("Выпуск токена", func(t *testing.T) {
		t.Setenv(config.EnvAdminJWTSecret, secret)

		out, err := runCmd(t, "token", "--subject", "ops", "--ttl", "1h")
		require.NoError(t, err)

		claims := &middleware.AdminClaims{}
		token, err := jwt.ParseWithClaims(string(bytes.TrimSpace([]byte(out))), claims,
			func(*jwt.Token) (any, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, middleware.AdminRole, claims.Role)
		assert.Equal(t, "ops", claims.Subject)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("Секрет не задан", func(t *testing.T) {
		t.Setenv(config.EnvAdminJWTSecret, "")

		_, err := runCmd(t, "token")

		require.ErrorIs(t, err, middleware.ErrEmptySecret)
	})

	t.Run("Отрицательный срок", func(t *testing.T) {
		t.Setenv(config.EnvAdminJWTSecret, secret)

		_, err := runCmd(t, "token", "--ttl", "-1h")

		require.Error(t, err)
	})
}
