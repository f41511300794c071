package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "modernc.org/sqlite"

	emailPkg "yogao/internal/adapters/email"
	web "yogao/internal/adapters/http"
	"yogao/internal/adapters/storage"
	accountStore "yogao/internal/adapters/storage/account"
	attendanceStore "yogao/internal/adapters/storage/attendance"
	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	scheduleStore "yogao/internal/adapters/storage/schedule"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/application/orchestrators"
	"yogao/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()

	// WAL mode, foreign keys, and a busy timeout keep SQLite happy under
	// concurrent web requests.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Wrap DB with slow-query logging
	timedDB := storage.NewTimedDB(db)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		StudentStore:    studentStore.NewSQLiteStore(timedDB),
		MembershipStore: membershipStore.NewSQLiteStore(timedDB),
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		ScheduleStore:   scheduleStore.NewSQLiteStore(timedDB),
		ExpenseStore:    expenseStore.NewSQLiteStore(timedDB),
	}

	// Seed the default admin account if no accounts exist
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	catalog, err := cfg.LoadCatalog()
	if err != nil {
		log.Fatalf("failed to load pass catalog: %v", err)
	}

	// Configure email sender
	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom))
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if cfg.Production() {
			log.Println("WARNING: YOGAO_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set YOGAO_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux(cfg.StaticDir, stores, catalog)

	log.Printf("Yogao %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
