package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "WORKER_COUNT", "MAX_UPLOAD_BYTES", "JOB_TTL", "GEMINI_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("MINIO_SECURE", "true")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
	if !cfg.MinioSecure {
		t.Error("MinioSecure = false")
	}
}

func TestLoadRejectsNonPositive(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("MAX_FOLDER_DEPTH", "0")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want fallback 4", cfg.WorkerCount)
	}
	if cfg.MaxFolderDepth != 64 {
		t.Errorf("MaxFolderDepth = %d, want fallback 64", cfg.MaxFolderDepth)
	}
}

func TestLoadIgnoresMalformed(t *testing.T) {
	t.Setenv("WORKER_COUNT", "lots")
	t.Setenv("JOB_TTL", "soon")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		APIKey:         "secret",
		MinioAccessKey: "access",
		MinioSecretKey: "key",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// The oracle credential is optional.
	cfg.GeminiAPIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate without oracle key: %v", err)
	}

	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing api key")
	}
}
