package generation

import "path/filepath"

// languageByExtension maps source file extensions to the language name
// used in generation requests.
var languageByExtension = map[string]string{
	".py":  "python",
	".js":  "javascript",
	".jsx": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",
	".go":  "go",
}

// DetectLanguage returns the language for a source file path. The second
// return is false for unsupported file types.
func DetectLanguage(path string) (string, bool) {
	lang, ok := languageByExtension[filepath.Ext(path)]
	return lang, ok
}
