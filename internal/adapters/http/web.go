package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"yogao/internal/adapters/email"
	"yogao/internal/adapters/http/middleware"
	accountStore "yogao/internal/adapters/storage/account"
	attendanceStore "yogao/internal/adapters/storage/attendance"
	expenseStore "yogao/internal/adapters/storage/expense"
	membershipStore "yogao/internal/adapters/storage/membership"
	scheduleStore "yogao/internal/adapters/storage/schedule"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/pass"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	AttendanceStore attendanceStore.Store
	ScheduleStore   scheduleStore.Store
	ExpenseStore    expenseStore.Store
}

// loadCSRFKey reads the CSRF secret from YOGAO_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("YOGAO_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("YOGAO_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("YOGAO_ENV") == "production" {
		log.Fatal("YOGAO_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set YOGAO_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global pass catalog (set by NewMux)
var catalog *pass.Catalog

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender). Nil means email
// features respond 503.
var emailSender email.Sender

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, c *pass.Catalog) http.Handler {
	stores = s
	catalog = c
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("YOGAO_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}
