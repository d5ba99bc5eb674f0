package config

import "testing"

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("API_KEY", "")
	t.Setenv("DRIVER", "")
	t.Setenv("PROFILES_PATH", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "")
	t.Setenv("VERTEX_PROJECT_ID", "")
	t.Setenv("VERTEX_LOCATION", "")

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetAPIKey() != "" {
		t.Fatalf("expected default api key empty, got %s", cfg.GetAPIKey())
	}
	if cfg.GetDriverName() != "sim" {
		t.Fatalf("expected default driver sim, got %s", cfg.GetDriverName())
	}
	if cfg.GetProfilesPath() != "profiles.yaml" {
		t.Fatalf("expected default profiles path profiles.yaml, got %s", cfg.GetProfilesPath())
	}
	if cfg.GetStorageBucket() != "scans" {
		t.Fatalf("expected default storage bucket scans, got %s", cfg.GetStorageBucket())
	}
	if cfg.GetVertexLocation() != "us-central1" {
		t.Fatalf("expected default vertex location us-central1, got %s", cfg.GetVertexLocation())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_KEY", "station-key")
	t.Setenv("DRIVER", "sim")
	t.Setenv("PROFILES_PATH", "/etc/scan-station/profiles.yaml")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_SERVICE_KEY", "test-key")
	t.Setenv("S3_BUCKET", "archive")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("VERTEX_PROJECT_ID", "proj")
	t.Setenv("VERTEX_LOCATION", "europe-west4")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetAPIKey() != "station-key" {
		t.Fatalf("expected api key station-key, got %s", cfg.GetAPIKey())
	}
	if cfg.GetProfilesPath() != "/etc/scan-station/profiles.yaml" {
		t.Fatalf("expected overridden profiles path, got %s", cfg.GetProfilesPath())
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" {
		t.Fatalf("expected supabase url http://localhost:54321, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
	if cfg.GetS3Bucket() != "archive" {
		t.Fatalf("expected s3 bucket archive, got %s", cfg.GetS3Bucket())
	}
	if cfg.GetS3Region() != "us-east-1" {
		t.Fatalf("expected s3 region us-east-1, got %s", cfg.GetS3Region())
	}
	if cfg.GetVertexProjectID() != "proj" {
		t.Fatalf("expected vertex project proj, got %s", cfg.GetVertexProjectID())
	}
	if cfg.GetVertexLocation() != "europe-west4" {
		t.Fatalf("expected vertex location europe-west4, got %s", cfg.GetVertexLocation())
	}
}

func TestNewConfig_PortFallback(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "9091")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
}
