package site

import "github.com/ilyakaznacheev/cleanenv"

// Config holds all site configuration, read from environment variables.
type Config struct {
	Name        string `env:"SITE_NAME" env-default:"Pulso Digital"`
	URL         string `env:"SITE_URL" env-default:"http://localhost:3000"`
	Description string `env:"SITE_DESCRIPTION" env-default:""`

	Addr         string `env:"ADDR" env-default:":3000"`
	DatabasePath string `env:"DATABASE_PATH" env-default:"data/site.db"`
	StaticDir    string `env:"STATIC_DIR" env-default:"public"`
	UploadsDir   string `env:"UPLOADS_DIR" env-default:"data/uploads"`

	AdminEmail        string `env:"ADMIN_EMAIL" env-default:"admin@localhost"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH" env-required:"true"`
	SessionSecret     string `env:"SESSION_SECRET" env-required:"true"`
	CookieSecure      bool   `env:"COOKIE_SECURE" env-default:"false"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
