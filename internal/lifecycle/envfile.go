package lifecycle

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
)

// envFile is a dotenv file edited in place. Comments and key order are kept;
// only the lines of keys that are set are touched.
type envFile struct {
	path    string
	content string
	values  map[string]string
}

func loadEnvFile(path string) (*envFile, error) {
	content, _, err := fsutil.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &envFile{path: path, content: content, values: values}, nil
}

// Has reports whether key is present with a non-empty value.
func (f *envFile) Has(key string) bool {
	return f.values[key] != ""
}

func (f *envFile) Get(key string) string {
	return f.values[key]
}

func envLinePattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(?:export\s+)?` + regexp.QuoteMeta(key) + `\s*=.*$`)
}

// Set replaces the line of key, or appends one when key is absent.
func (f *envFile) Set(key, value string) error {
	line, err := godotenv.Marshal(map[string]string{key: value})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	re := envLinePattern(key)
	if re.MatchString(f.content) {
		replaced := false
		f.content = re.ReplaceAllStringFunc(f.content, func(string) string {
			if replaced {
				return ""
			}
			replaced = true
			return line
		})
	} else {
		if f.content != "" && !strings.HasSuffix(f.content, "\n") {
			f.content += "\n"
		}
		f.content += line + "\n"
	}
	f.values[key] = value
	return nil
}

// Ensure sets key only when it is missing or empty. It reports whether the
// file changed.
func (f *envFile) Ensure(key string, value func() (string, error)) (bool, error) {
	if f.Has(key) {
		return false, nil
	}
	v, err := value()
	if err != nil {
		return false, err
	}
	return true, f.Set(key, v)
}

func (f *envFile) Save() error {
	return f.SaveAs(f.path)
}

func (f *envFile) SaveAs(path string) error {
	if err := fsutil.WriteText(path, f.content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func literal(v string) func() (string, error) {
	return func() (string, error) { return v, nil }
}

// materializeEnv writes dst from the example file with overrides applied.
// An existing dst is left untouched.
func materializeEnv(example, dst string, overrides [][2]string) (bool, error) {
	if fsutil.IsFile(dst) {
		return false, nil
	}
	f, err := loadEnvFile(example)
	if err != nil {
		return false, err
	}
	for _, kv := range overrides {
		if err := f.Set(kv[0], kv[1]); err != nil {
			return false, err
		}
	}
	return true, f.SaveAs(dst)
}
