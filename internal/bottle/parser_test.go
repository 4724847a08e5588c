package bottle_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/brewtrack/internal/bottle"
	"github.com/maynagashev/brewtrack/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		project      string
		filename     string
		expected     models.BottleIdentity
		expectedErr  error
		expectedCode string
	}{
		{
			name:     "arm64 sequoia",
			project:  "rona",
			filename: "rona-2.17.7.arm64_sequoia.bottle.tar.gz",
			expected: models.BottleIdentity{Project: "rona", Version: "2.17.7", Platform: "arm64_sequoia"},
		},
		{
			name:     "Linux x86_64",
			project:  "rona",
			filename: "rona-2.17.7.x86_64_linux.bottle.tar.gz",
			expected: models.BottleIdentity{Project: "rona", Version: "2.17.7", Platform: "x86_64_linux"},
		},
		{
			name:     "Intel без префикса архитектуры",
			project:  "rona",
			filename: "rona-1.0.0.sequoia.bottle.tar.gz",
			expected: models.BottleIdentity{Project: "rona", Version: "1.0.0", Platform: "sequoia"},
		},
		{
			name:     "Проект с дефисами в имени",
			project:  "clean-dev-dirs",
			filename: "clean-dev-dirs-3.1.0.arm64_sonoma.bottle.tar.gz",
			expected: models.BottleIdentity{Project: "clean-dev-dirs", Version: "3.1.0", Platform: "arm64_sonoma"},
		},
		{
			name:     "Версия с дефисом и плюсом",
			project:  "rona",
			filename: "rona-2.0.0-rc.1+build5.big_sur.bottle.tar.gz",
			expected: models.BottleIdentity{Project: "rona", Version: "2.0.0-rc.1+build5", Platform: "big_sur"},
		},
		{
			name:     "Номер пересборки",
			project:  "rona",
			filename: "rona-2.17.7.arm64_sequoia.bottle.2.tar.gz",
			expected: models.BottleIdentity{Project: "rona", Version: "2.17.7", Platform: "arm64_sequoia", Rebuild: 2},
		},
		{
			name:     "Платформонезависимая бутылка",
			project:  "rona",
			filename: "rona-1.2.all.bottle.tar.gz",
			expected: models.BottleIdentity{Project: "rona", Version: "1.2", Platform: "all"},
		},
		{
			name:         "Неизвестная платформа",
			project:      "rona",
			filename:     "rona-2.17.7.windows.bottle.tar.gz",
			expectedErr:  bottle.ErrUnrecognizedFilename,
			expectedCode: bottle.CodeUnrecognizedFilename,
		},
		{
			name:         "Нет суффикса архива",
			project:      "rona",
			filename:     "rona-2.17.7.arm64_sequoia.tar.gz",
			expectedErr:  bottle.ErrUnrecognizedFilename,
			expectedCode: bottle.CodeUnrecognizedFilename,
		},
		{
			name:         "Пересборка с ведущим нулем",
			project:      "rona",
			filename:     "rona-2.17.7.arm64_sequoia.bottle.01.tar.gz",
			expectedErr:  bottle.ErrUnrecognizedFilename,
			expectedCode: bottle.CodeUnrecognizedFilename,
		},
		{
			name:         "Имя файла другого проекта",
			project:      "rona",
			filename:     "other-2.17.7.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrUnrecognizedFilename,
			expectedCode: bottle.CodeUnrecognizedFilename,
		},
		{
			name:         "Пустая версия",
			project:      "rona",
			filename:     "rona-.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrMalformedVersion,
			expectedCode: bottle.CodeMalformedVersion,
		},
		{
			name:         "Версия отсутствует",
			project:      "rona",
			filename:     "rona-arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrMalformedVersion,
			expectedCode: bottle.CodeMalformedVersion,
		},
		{
			name:         "Версия совпадает с ключом итогов",
			project:      "rona",
			filename:     "rona-total_downloads.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrMalformedVersion,
			expectedCode: bottle.CodeMalformedVersion,
		},
		{
			name:         "Версия с обходом пути",
			project:      "rona",
			filename:     "rona-1..2.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrMalformedVersion,
			expectedCode: bottle.CodeMalformedVersion,
		},
		{
			name:         "Пустой проект",
			project:      "",
			filename:     "-1.0.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrInvalidProject,
			expectedCode: bottle.CodeInvalidProject,
		},
		{
			name:         "Проект с обходом пути",
			project:      "..",
			filename:     "..-1.0.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrInvalidProject,
			expectedCode: bottle.CodeInvalidProject,
		},
		{
			name:         "Проект со слешем",
			project:      "rona/../etc",
			filename:     "rona-1.0.arm64_sequoia.bottle.tar.gz",
			expectedErr:  bottle.ErrInvalidProject,
			expectedCode: bottle.CodeInvalidProject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := bottle.Parse(tt.project, tt.filename)
			if tt.expectedErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.expectedErr)
				var parseErr *bottle.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tt.expectedCode, parseErr.Code)
				assert.Equal(t, models.BottleIdentity{}, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, identity)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	inputs := [][2]string{
		{"rona", "rona-2.17.7.arm64_sequoia.bottle.tar.gz"},
		{"rona", "rona-2.17.7.windows.bottle.tar.gz"},
		{"rona", "rona-.sonoma.bottle.tar.gz"},
	}
	for _, in := range inputs {
		first, firstErr := bottle.Parse(in[0], in[1])
		second, secondErr := bottle.Parse(in[0], in[1])
		assert.Equal(t, first, second)
		assert.Equal(t, firstErr, secondErr)
	}
}

func TestNewParser_ExtraPlatforms(t *testing.T) {
	filename := "rona-1.0.0.arm64_nextcat.bottle.tar.gz"

	_, err := bottle.Parse("rona", filename)
	require.ErrorIs(t, err, bottle.ErrUnrecognizedFilename, "по умолчанию новый тег не известен")

	parser := bottle.NewParser("arm64_nextcat", "  ")
	identity, err := parser.Parse("rona", filename)
	require.NoError(t, err)
	assert.Equal(t, "arm64_nextcat", identity.Platform)
	assert.Equal(t, "1.0.0", identity.Version)
	assert.Contains(t, parser.Platforms(), "arm64_nextcat")
	assert.NotContains(t, parser.Platforms(), "")
}

func TestFilename_RoundTrip(t *testing.T) {
	for _, platform := range bottle.DefaultPlatforms() {
		for _, rebuild := range []int{0, 1, 3} {
			identity := models.BottleIdentity{Project: "clean-dev-dirs", Version: "3.1.0", Platform: platform, Rebuild: rebuild}
			parsed, err := bottle.Parse(identity.Project, bottle.Filename(identity))
			require.NoError(t, err, platform)
			assert.Equal(t, identity, parsed)
		}
	}
}

func TestDefaultPlatforms(t *testing.T) {
	platforms := bottle.DefaultPlatforms()
	assert.Contains(t, platforms, "arm64_sequoia")
	assert.Contains(t, platforms, "sequoia")
	assert.Contains(t, platforms, "x86_64_linux")
	assert.NotContains(t, platforms, "windows")
}
