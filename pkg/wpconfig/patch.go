// Package wpconfig brings a wp-config.php file to a desired state: it
// patches individual declarations in place, delegates fresh-file
// creation to a generator, and provisions the authentication secrets.
//
// The file is treated as an opaque byte buffer. A patch locates the
// span of one declaration's value literal and splices a new literal
// into it; everything outside that span, comments and unrelated
// declarations included, survives byte for byte.
package wpconfig

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wpstrap/wpstrap/pkg/filesystem"
	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// literalPattern matches a PHP scalar literal: a single- or
// double-quoted string (with backslash escapes), a boolean, or an
// integer.
const literalPattern = `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"|(?i:true|false)|-?\d+`

// declarationPattern returns a pattern matching the declaration of key
// with the value literal as capture group 2. Keys starting with "$"
// match an assignment ($table_prefix = '...';), anything else matches
// a define('KEY', ...) call with either quote style.
func declarationPattern(key string) *regexp.Regexp {
	if strings.HasPrefix(key, "$") {
		return regexp.MustCompile(
			`(` + regexp.QuoteMeta(key) + `\s*=\s*)(` + literalPattern + `)(\s*;)`)
	}
	return regexp.MustCompile(
		`(define\s*\(\s*['"]` + regexp.QuoteMeta(key) + `['"]\s*,\s*)(` + literalPattern + `)(\s*\))`)
}

// phpLiteral serializes value as a PHP literal. Strings are always
// emitted single-quoted with backslashes and single quotes escaped,
// regardless of the quote style previously in the file.
func phpLiteral(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
		return "'" + escaped + "'", nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", wperrors.Newf(wperrors.ErrInvalidInput,
			"cannot serialize %T as a PHP literal", value)
	}
}

// phpUnquote decodes a PHP string literal produced by phpLiteral, or
// best-effort for hand-written literals. Non-string literals are
// returned as written.
func phpUnquote(literal string) string {
	if len(literal) < 2 {
		return literal
	}
	quote := literal[0]
	if quote != '\'' && quote != '"' {
		return literal
	}
	body := literal[1 : len(literal)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == quote) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// PatchConstant rewrites the declaration of key in the file at path so
// it holds value. The whole file is rewritten, but only the matched
// value literal changes. A key with no matching declaration is a
// silent no-op (the caller is expected to have created the file with
// the declaration present); the returned bool reports whether a patch
// was applied. Write failures are fatal.
func PatchConstant(fsys filesystem.FS, path, key string, value interface{}) (bool, error) {
	logger := logging.GetLogger("wpconfig.patch")

	literal, err := phpLiteral(value)
	if err != nil {
		return false, err
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return false, wperrors.Wrapf(err, wperrors.ErrConfigRead, "reading %s", path)
	}

	re := declarationPattern(key)
	loc := re.FindSubmatchIndex(data)
	if loc == nil {
		logger.Debug().Str("key", key).Str("path", path).Msg("Declaration not found, skipping")
		return false, nil
	}

	// Splice the new literal over group 2 only.
	var out []byte
	out = append(out, data[:loc[4]]...)
	out = append(out, literal...)
	out = append(out, data[loc[5]:]...)

	if err := fsys.WriteFile(path, out, 0o644); err != nil {
		return false, wperrors.Wrapf(err, wperrors.ErrConfigWrite, "writing %s", path)
	}

	logger.Debug().Str("key", key).Str("path", path).Msg("Patched declaration")
	return true, nil
}

// ConstantValue reads the current value of key's declaration. String
// literals are decoded; booleans and numbers are returned as written.
func ConstantValue(fsys filesystem.FS, path, key string) (string, bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", false, wperrors.Wrapf(err, wperrors.ErrConfigRead, "reading %s", path)
	}

	m := declarationPattern(key).FindSubmatch(data)
	if m == nil {
		return "", false, nil
	}
	return phpUnquote(string(m[2])), true, nil
}
