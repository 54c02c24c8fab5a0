package domain

import (
	"encoding/json"
	"testing"
)

func TestGitHubConfigMerge(t *testing.T) {
	cfg := GitHubConfig{Token: "X"}
	cfg.Merge(GitHubConfig{Repository: "Y"})

	if cfg.Token != "X" || cfg.Repository != "Y" {
		t.Errorf("Merge() = %+v, want token X and repository Y", cfg)
	}
}

func TestGitHubConfigFieldAccess(t *testing.T) {
	var cfg GitHubConfig
	if !cfg.Set(GitHubFieldPath, "pathways.json") {
		t.Fatal("Set(path) returned false")
	}
	if cfg.Set("branch", "main") {
		t.Error("Set(branch) should reject unknown field")
	}
	if v, ok := cfg.Get(GitHubFieldPath); !ok || v != "pathways.json" {
		t.Errorf("Get(path) = %q, %v", v, ok)
	}
	if _, ok := cfg.Get("branch"); ok {
		t.Error("Get(branch) should report unknown field")
	}
}

func TestGitHubConfigRepoAlias(t *testing.T) {
	var cfg GitHubConfig
	if err := json.Unmarshal([]byte(`{"token":"t","repo":"me/notes"}`), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Repository != "me/notes" {
		t.Errorf("Repository = %q, want alias value", cfg.Repository)
	}

	if err := json.Unmarshal([]byte(`{"repository":"a/b","repo":"c/d"}`), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Repository != "a/b" {
		t.Errorf("Repository = %q, want explicit field to win", cfg.Repository)
	}
}
