package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmatatu/billiards/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database (empty disables the shot ledger)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (empty disables snapshot caching)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionTTLMinutes  int
	SnapshotTTLSeconds int
	IdleCheckSeconds   int
	FrameHz            float64
	TableFile          string

	// Physics
	PhysicsHz        float64
	MaxStepsPerFrame int
	BallMass         float64
	BallDiameter     float64
	PocketDiameter   float64
	Elasticity       float64
	FrictionMaxForce float64
	MaxForce         float64
	ForceStep        float64
	ForcePerBar      float64

	// Security
	JWTSecret      string
	PlayerTokenMin int
	AdminTokenHash string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		SessionTTLMinutes:  getEnvInt("SESSION_TTL_MINUTES", 30),
		SnapshotTTLSeconds: getEnvInt("SNAPSHOT_TTL_SECONDS", 3600),
		IdleCheckSeconds:   getEnvInt("IDLE_CHECK_SECONDS", 30),
		FrameHz:            getEnvFloat("FRAME_HZ", 60),
		TableFile:          getEnv("TABLE_FILE", ""),

		// Physics
		PhysicsHz:        getEnvFloat("PHYSICS_HZ", game.DefaultStepHz),
		MaxStepsPerFrame: getEnvInt("MAX_STEPS_PER_FRAME", game.DefaultMaxStepsPerFrame),
		BallMass:         getEnvFloat("BALL_MASS", game.DefaultBallMass),
		BallDiameter:     getEnvFloat("BALL_DIAMETER", game.DefaultBallDiameter),
		PocketDiameter:   getEnvFloat("POCKET_DIAMETER", game.DefaultPocketDiameter),
		Elasticity:       getEnvFloat("ELASTICITY", game.DefaultElasticity),
		FrictionMaxForce: getEnvFloat("FRICTION_MAX_FORCE", game.DefaultFrictionMaxForce),
		MaxForce:         getEnvFloat("MAX_FORCE", game.DefaultMaxForce),
		ForceStep:        getEnvFloat("FORCE_STEP", game.DefaultForceStep),
		ForcePerBar:      getEnvFloat("FORCE_PER_BAR", game.DefaultForcePerBar),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		PlayerTokenMin: getEnvInt("PLAYER_TOKEN_MINUTES", 120),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

// Physics projects the tunables onto the simulation settings.
func (c *Config) Physics() game.Settings {
	s := game.DefaultSettings()
	s.StepHz = c.PhysicsHz
	s.MaxStepsPerFrame = c.MaxStepsPerFrame
	s.BallMass = c.BallMass
	s.BallDiameter = c.BallDiameter
	s.PocketDiameter = c.PocketDiameter
	s.Elasticity = c.Elasticity
	s.CushionElasticity = c.Elasticity
	s.FrictionMaxForce = c.FrictionMaxForce
	s.MaxForce = c.MaxForce
	s.ForceStep = c.ForceStep
	s.ForcePerBar = c.ForcePerBar
	return s
}

// Table loads TABLE_FILE when set, otherwise the stock table.
func (c *Config) Table() (*game.Table, error) {
	s := c.Physics()
	if c.TableFile == "" {
		t := game.NewStandardTable(s)
		return t, t.Validate()
	}
	return game.LoadTableFile(c.TableFile, s)
}

// SessionOptions builds the session manager options.
func (c *Config) SessionOptions(table *game.Table) game.Options {
	return game.Options{
		Settings:    c.Physics(),
		Table:       table,
		FrameHz:     c.FrameHz,
		SessionTTL:  time.Duration(c.SessionTTLMinutes) * time.Minute,
		SnapshotTTL: time.Duration(c.SnapshotTTLSeconds) * time.Second,
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
