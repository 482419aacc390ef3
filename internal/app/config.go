package app

import (
	"time"

	"github.com/verdantry/canopy-backend/internal/compliance/audit"
	"github.com/verdantry/canopy-backend/internal/platform/envutil"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AuditConcurrency int
	AuditCallTimeout time.Duration

	DocAIProjectID   string
	DocAILocation    string
	DocAIProcessorID string

	COAFieldRulesPath string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	auditConcurrency := envutil.GetEnvAsInt("AUDIT_CONCURRENCY", audit.DefaultConcurrency, log)
	auditCallTimeoutSeconds := envutil.GetEnvAsInt("AUDIT_CALL_TIMEOUT", int(audit.DefaultCallTimeout/time.Second), log)

	return Config{
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,

		AuditConcurrency: auditConcurrency,
		AuditCallTimeout: time.Duration(auditCallTimeoutSeconds) * time.Second,

		DocAIProjectID:   envutil.GetEnv("DOCUMENTAI_PROJECT_ID", "", log),
		DocAILocation:    envutil.GetEnv("DOCUMENTAI_LOCATION", "us", log),
		DocAIProcessorID: envutil.GetEnv("DOCUMENTAI_PROCESSOR_ID", "", log),

		COAFieldRulesPath: envutil.GetEnv("COA_FIELD_RULES_PATH", "", log),
	}
}
