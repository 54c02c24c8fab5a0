package compat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/store"
)

// PathwaysKey is the legacy key carrying the whole pathway collection.
const PathwaysKey = "pathways"

// Legacy top-level names of the GitHub config fields.
const (
	KeyGitHubToken = "githubToken"
	KeyGitHubRepo  = "githubRepo"
	KeyGitHubPath  = "githubPath"
)

// ErrInvalidKeys is returned for a keys argument of an unsupported shape.
var ErrInvalidKeys = errors.New("invalid keys argument")

var configFields = map[string]string{
	KeyGitHubToken: domain.GitHubFieldToken,
	KeyGitHubRepo:  domain.GitHubFieldRepository,
	KeyGitHubPath:  domain.GitHubFieldPath,
}

// configKeyOrder fixes iteration order over configFields.
var configKeyOrder = []string{KeyGitHubToken, KeyGitHubRepo, KeyGitHubPath}

// ConfigField maps a legacy key to its GitHubConfig field name.
func ConfigField(key string) (field string, ok bool) {
	field, ok = configFields[key]
	return field, ok
}

type keyKind int

const (
	kindSetting keyKind = iota
	kindPathways
	kindConfig
)

func classify(key string) keyKind {
	if key == PathwaysKey {
		return kindPathways
	}
	if _, ok := configFields[key]; ok {
		return kindConfig
	}
	return kindSetting
}

// keyList normalises the string forms of a keys argument.
func keyList(keys any) ([]string, error) {
	switch k := keys.(type) {
	case string:
		return []string{k}, nil
	case []string:
		return k, nil
	case []any:
		out := make([]string, 0, len(k))
		for i, v := range k {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidKeys, i, v)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidKeys, keys)
	}
}

// sortedKeys returns m's keys in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// decodePathways accepts the shapes a pathway list arrives in: typed,
// generic JSON values, or raw JSON.
func decodePathways(v any) ([]domain.Pathway, error) {
	switch p := v.(type) {
	case []domain.Pathway:
		out := make([]domain.Pathway, len(p))
		copy(out, p)
		return out, nil
	case json.RawMessage:
		if !strings.HasPrefix(strings.TrimSpace(string(p)), "[") {
			return nil, fmt.Errorf("%w: %s is not a list", store.ErrSerialization, PathwaysKey)
		}
		var out []domain.Pathway
		if err := json.Unmarshal(p, &out); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", store.ErrSerialization, PathwaysKey, err)
		}
		return out, nil
	case []any, []map[string]any:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", store.ErrSerialization, PathwaysKey, err)
		}
		return decodePathways(json.RawMessage(data))
	default:
		return nil, fmt.Errorf("%w: %s is %T, not a list", store.ErrSerialization, PathwaysKey, v)
	}
}

// configValue reads a config field value. nil clears the field.
func configValue(key string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case json.RawMessage:
		var out *string
		if err := json.Unmarshal(s, &out); err != nil {
			return "", fmt.Errorf("%w: %s must be a string: %w", store.ErrSerialization, key, err)
		}
		if out == nil {
			return "", nil
		}
		return *out, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", store.ErrSerialization, key, v)
	}
}

// settingValue encodes v for storage. Raw JSON is kept byte for byte.
func settingValue(key string, v any) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: setting %q: %w", store.ErrSerialization, key, err)
	}
	return data, nil
}
