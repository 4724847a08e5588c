package bottle

import "strings"

// Кодовые имена релизов macOS, для которых Homebrew собирает бутылки.
// Новый релиз добавляется сюда одной строкой.
var macOSReleases = []string{
	"tahoe",
	"sequoia",
	"sonoma",
	"ventura",
	"monterey",
	"big_sur",
	"catalina",
	"mojave",
	"high_sierra",
	"sierra",
	"el_capitan",
}

// Архитектурные префиксы тегов macOS. Пустой префикс - Intel.
var macOSArchPrefixes = []string{"", "arm64_"}

// Теги, не выводимые из списка релизов macOS.
var otherPlatforms = []string{
	"x86_64_linux",
	"arm64_linux",
	"all", // бутылка, не зависящая от платформы
}

// DefaultPlatforms возвращает словарь известных тегов платформ.
func DefaultPlatforms() []string {
	tags := make([]string, 0, len(macOSReleases)*len(macOSArchPrefixes)+len(otherPlatforms))
	for _, release := range macOSReleases {
		for _, prefix := range macOSArchPrefixes {
			tags = append(tags, prefix+release)
		}
	}
	return append(tags, otherPlatforms...)
}

// vocabulary - множество допустимых тегов платформ.
type vocabulary map[string]struct{}

func newVocabulary(tags ...string) vocabulary {
	v := make(vocabulary, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		v[tag] = struct{}{}
	}
	return v
}

func (v vocabulary) contains(tag string) bool {
	_, ok := v[tag]
	return ok
}
