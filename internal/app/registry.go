package app

import (
	"database/sql"
	"path/filepath"

	"gigpay/internal/compliance"
	"gigpay/internal/exemption"
	"gigpay/internal/jurisdiction"
	"gigpay/internal/laborrule"
	"gigpay/internal/messaging/kafka"
	"gigpay/internal/middleware"
	"gigpay/internal/payment"
	"gigpay/internal/rbac/infra"
	"gigpay/internal/shared/clock"
	"gigpay/internal/shared/counter"
	"gigpay/internal/taxcalc"
	"gigpay/internal/violation"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	clk := clock.System()

	// --- Repositories ---
	jurisdictionRepo := jurisdiction.NewRepository(gormDB)
	laborRuleRepo := laborrule.NewRepository(gormDB)
	taxCalcRepo := taxcalc.NewRepository(gormDB)
	exemptionRepo := exemption.NewRepository(gormDB)
	violationRepo := violation.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}

	// --- Services ---
	resolver := jurisdiction.NewResolver(jurisdictionRepo, laborRuleRepo, clk)
	jurisdictionService := jurisdiction.NewService(db, jurisdictionRepo)
	laborRuleService := laborrule.NewService(db, laborRuleRepo)
	taxCalcService := taxcalc.NewService(db, taxCalcRepo, resolver)
	exemptionService := exemption.NewService(db, exemptionRepo, laborRuleRepo, clk)
	violationService := violation.NewService(db, violationRepo, counterRepo, clk)
	engine := compliance.NewEngine(exemptionService, violationService, clk)
	paymentService := payment.NewService(db, resolver, taxCalcService, engine, outboxRepo, clk)

	// --- Handlers ---
	jurisdictionHandler := jurisdiction.NewHandlerWithRedis(jurisdictionService, resolver, rdb)
	laborRuleHandler := laborrule.NewHandler(laborRuleService)
	taxCalcHandler := taxcalc.NewHandler(taxCalcService)
	exemptionHandler := exemption.NewHandler(exemptionService)
	violationHandler := violation.NewHandler(violationService)
	paymentHandler := payment.NewHandler(paymentService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(50, 100))
	{
		jurisdiction.RegisterRoutes(api, jurisdictionHandler, enforcer)
		laborrule.RegisterRoutes(api, laborRuleHandler, enforcer)
		taxcalc.RegisterRoutes(api, taxCalcHandler)
		exemption.RegisterRoutes(api, exemptionHandler, enforcer)
		violation.RegisterRoutes(api, violationHandler, enforcer)
		payment.RegisterRoutes(api, paymentHandler, enforcer, rdb)
	}

	return nil
}
