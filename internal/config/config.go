package config

import (
	"os"

	"scan-station/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	LogLevel        string
	APIKey          string
	DriverName      string
	ProfilesPath    string
	SupabaseURL     string
	SupabaseKey     string
	StorageBucket   string
	S3Bucket        string
	S3Region        string
	VertexProjectID string
	VertexLocation  string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Keep SERVER_PORT for local/dev compatibility alongside PORT.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		APIKey:          getEnvOrDefault("API_KEY", ""),
		DriverName:      getEnvOrDefault("DRIVER", "sim"),
		ProfilesPath:    getEnvOrDefault("PROFILES_PATH", "profiles.yaml"),
		SupabaseURL:     getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:     getEnvOrDefault("SUPABASE_SERVICE_KEY", ""),
		StorageBucket:   getEnvOrDefault("STORAGE_BUCKET", "scans"),
		S3Bucket:        getEnvOrDefault("S3_BUCKET", ""),
		S3Region:        getEnvOrDefault("S3_REGION", ""),
		VertexProjectID: getEnvOrDefault("VERTEX_PROJECT_ID", ""),
		VertexLocation:  getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAPIKey returns the static API key; empty disables auth
func (c *AppConfig) GetAPIKey() string {
	return c.APIKey
}

// GetDriverName returns the scanner driver backend name
func (c *AppConfig) GetDriverName() string {
	return c.DriverName
}

// GetProfilesPath returns the scan profiles YAML path
func (c *AppConfig) GetProfilesPath() string {
	return c.ProfilesPath
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetStorageBucket returns the Supabase storage bucket for exports
func (c *AppConfig) GetStorageBucket() string {
	return c.StorageBucket
}

// GetS3Bucket returns the S3 bucket for exports
func (c *AppConfig) GetS3Bucket() string {
	return c.S3Bucket
}

// GetS3Region returns the S3 region
func (c *AppConfig) GetS3Region() string {
	return c.S3Region
}

// GetVertexProjectID returns the Vertex AI project
func (c *AppConfig) GetVertexProjectID() string {
	return c.VertexProjectID
}

// GetVertexLocation returns the Vertex AI location
func (c *AppConfig) GetVertexLocation() string {
	return c.VertexLocation
}

// Helper function for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
