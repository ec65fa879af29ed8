// Package languages maps changed-file paths to language, file type, and
// purpose metadata. Detection is filename-based (enry), refined by a small
// set of project-manifest and documentation heuristics, and overridable per
// extension.
package languages

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

// Info is the metadata attached to one changed file path.
type Info struct {
	Language string `json:"language"`
	Type     string `json:"type"`
	Purpose  string `json:"purpose"`
}

// DevNull is the path unified diffs use for a missing pre- or post-image.
const DevNull = "/dev/null"

// textFileNames are extension-less file names treated as plain text.
var textFileNames = []string{
	"AUTHORS", "COPYING", "ChangeLog", "INSTALL",
	"NEWS", "PACKAGERS", "README", "THANKS", "TODO",
}

// projectFilePatterns match build-system and package-manager manifests.
// Matched against the base name with path.Match semantics.
var projectFilePatterns = []string{
	"*.cmake",
	"*.nuspec",
	"BUILD",
	"CMakeLists.txt",
	"Cargo.toml",
	"Dockerfile",
	"Gemfile",
	"Makefile",
	"Podfile",
	"bower.json",
	"build.gradle",
	"build.gradle.kts",
	"build.sbt",
	"buildfile",
	"composer.json",
	"conanfile.py",
	"conanfile.txt",
	"go.mod",
	"go.sum",
	"ivy.xml",
	"manifest",
	"meson.build",
	"package.json",
	"pom.xml",
	"project.clj",
	"pyproject.toml",
	"requirements.txt",
	"setup.cfg",
	"vcpkg.json",
}

// Annotator resolves file metadata from path names. The extension override
// map is applied before detection; it is fixed at construction and never
// mutated afterwards, so one Annotator can serve a whole batch run.
type Annotator struct {
	extToLanguage map[string]string
}

// NewAnnotator returns an Annotator with the given extension-to-language
// overrides. Keys are normalized to a leading dot and lower case.
func NewAnnotator(extToLanguage map[string]string) *Annotator {
	normalized := make(map[string]string, len(extToLanguage))

	for ext, lang := range extToLanguage {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		normalized[ext] = lang
	}

	return &Annotator{extToLanguage: normalized}
}

// Annotate returns language, type, and purpose metadata for a repository
// path. It is a pure function of the path and the annotator's tables.
func (a *Annotator) Annotate(filePath string) Info {
	language := a.language(filePath)
	fileType := languageType(language)

	return Info{
		Language: language,
		Type:     fileType,
		Purpose:  purposeOf(filePath, fileType),
	}
}

func (a *Annotator) language(filePath string) string {
	if filePath == DevNull || strings.HasSuffix(filePath, DevNull) {
		return DevNull
	}

	base := path.Base(filePath)

	ext := strings.ToLower(path.Ext(base))
	if ext != "" {
		lang, ok := a.extToLanguage[ext]
		if ok {
			return lang
		}
	}

	if lang := enry.GetLanguage(base, nil); lang != "" {
		return lang
	}

	for _, name := range textFileNames {
		if strings.Contains(base, name) {
			return "Text"
		}
	}

	return "unknown"
}

// languageType maps enry's language classification onto the document schema's
// type vocabulary: programming, markup, data, prose, or other.
func languageType(language string) string {
	switch enry.GetLanguageType(language) {
	case enry.Programming:
		return "programming"
	case enry.Markup:
		return "markup"
	case enry.Data:
		return "data"
	case enry.Prose:
		return "prose"
	default:
		return "other"
	}
}

// purposeOf derives the semantic role of a file from its path and type.
func purposeOf(filePath, fileType string) string {
	if strings.Contains(strings.ToLower(filePath), "test") {
		return "test"
	}

	base := path.Base(filePath)

	for _, pattern := range projectFilePatterns {
		matched, err := path.Match(pattern, base)
		if err == nil && matched {
			return "project"
		}
	}

	if enry.IsDocumentation(filePath) || fileType == "prose" {
		return "documentation"
	}

	switch fileType {
	case "programming", "data", "markup", "other":
		return fileType
	}

	return "unknown"
}
