package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/fma-academy/registration-service/internal/adapters/repository"
	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/services"
	"github.com/fma-academy/registration-service/internal/mocks"
)

// These tests need a PostgreSQL database: set TEST_DB_CONNECTION_STRING.
var testDB *sql.DB

func TestMain(m *testing.M) {
	dbURL := os.Getenv("TEST_DB_CONNECTION_STRING")
	if dbURL == "" {
		fmt.Println("Skipping repository tests: TEST_DB_CONNECTION_STRING not set")
		os.Exit(0)
	}

	var err error
	testDB, err = sql.Open("postgres", dbURL)
	if err != nil {
		fmt.Printf("Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}
	if err := testDB.Ping(); err != nil {
		fmt.Printf("Failed to ping test database: %v\n", err)
		os.Exit(1)
	}
	if err := setupTestSchema(testDB); err != nil {
		fmt.Printf("Failed to setup test schema: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func setupTestSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			address TEXT NOT NULL,
			post_code TEXT NOT NULL,
			home_phone TEXT,
			mobile_phone TEXT NOT NULL,
			work_phone TEXT,
			relationship TEXT NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			gocardless_mandate_id TEXT,
			gocardless_customer_id TEXT,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS signatures (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			signature_data TEXT NOT NULL,
			ip_address TEXT,
			user_agent TEXT
		);
		CREATE TABLE IF NOT EXISTS members (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			package TEXT,
			package_quantity INT,
			activity TEXT,
			day TEXT,
			time TEXT,
			date_of_birth DATE,
			gender TEXT,
			sibling_attends BOOLEAN,
			has_medical_conditions BOOLEAN,
			medical_conditions_details TEXT,
			has_allergies BOOLEAN,
			allergies_details TEXT,
			has_injury BOOLEAN,
			injury_details TEXT,
			photo_consent BOOLEAN,
			first_aid_consent BOOLEAN,
			membership_option TEXT,
			branch_id TEXT
		);
		CREATE TABLE IF NOT EXISTS emergency_contacts (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			post_code TEXT NOT NULL,
			home_phone TEXT,
			mobile_phone TEXT NOT NULL,
			work_phone TEXT,
			relationship TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS contract_acceptances (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			accepted_at TIMESTAMPTZ NOT NULL,
			contract_version TEXT NOT NULL CHECK (contract_version <> '')
		);
		CREATE TABLE IF NOT EXISTS email_logs (
			id UUID PRIMARY KEY,
			recipient TEXT NOT NULL,
			subject TEXT NOT NULL,
			member_name TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS outbox_events (
			id VARCHAR(36) PRIMARY KEY,
			event_type VARCHAR(50) NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			processed_at TIMESTAMP
		);
	`)
	return err
}

func newRegistration(t *testing.T) domain.Registration {
	t.Helper()
	state := mocks.ValidFormState()
	state.HasAllergies = true
	state.AllergiesDetails = "Peanuts"
	return services.BuildRegistration(uuid.NewString(), state, ports.ClientInfo{UserAgent: "ua"}, time.Now())
}

func countRows(t *testing.T, table, userID string) int {
	t.Helper()
	var n int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE user_id = $1", userID).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLRepository_CreateRegistration(t *testing.T) {
	repo := repository.NewSQLRepository(testDB)
	reg := newRegistration(t)

	if err := repo.CreateRegistration(context.Background(), reg); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, table := range []string{"signatures", "members", "emergency_contacts", "contract_acceptances"} {
		if n := countRows(t, table, reg.Guardian.ID); n != 1 {
			t.Errorf("expected one %s row, got %d", table, n)
		}
	}

	var injury sql.NullString
	if err := testDB.QueryRow("SELECT injury_details FROM members WHERE user_id = $1", reg.Guardian.ID).Scan(&injury); err != nil {
		t.Fatal(err)
	}
	if injury.Valid {
		t.Errorf("expected NULL injury details, got %q", injury.String)
	}
}

func TestSQLRepository_CreateRegistrationRollsBack(t *testing.T) {
	repo := repository.NewSQLRepository(testDB)
	reg := newRegistration(t)
	// Violates the contract_version check, the last of the five inserts.
	reg.ContractAcceptance.ContractVersion = ""

	if err := repo.CreateRegistration(context.Background(), reg); err == nil {
		t.Fatal("expected insert to fail")
	}

	var n int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM users WHERE id = $1", reg.Guardian.ID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected no user row after rollback, got %d", n)
	}
}

func TestSQLRepository_PaymentProfileAndActivation(t *testing.T) {
	repo := repository.NewSQLRepository(testDB)
	ctx := context.Background()
	reg := newRegistration(t)
	if err := repo.CreateRegistration(ctx, reg); err != nil {
		t.Fatal(err)
	}

	plan, err := repo.FindMembershipOption(ctx, reg.Guardian.ID)
	if err != nil || plan != domain.PlanAnnual {
		t.Errorf("expected annual, got %q (%v)", plan, err)
	}

	profile, err := repo.FindPaymentProfile(ctx, reg.Guardian.ID)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Email != reg.Guardian.Email || profile.Package != "Gold" || profile.PackageQuantity != 1 {
		t.Errorf("unexpected profile %+v", profile)
	}

	if err := repo.ActivatePayment(ctx, reg.Guardian.ID, domain.Mandate{MandateID: "MD1", CustomerID: "CU1"}); err != nil {
		t.Fatal(err)
	}
	var status string
	if err := testDB.QueryRow("SELECT payment_status FROM users WHERE id = $1", reg.Guardian.ID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != string(domain.PaymentActive) {
		t.Errorf("expected active, got %s", status)
	}

	missing := uuid.NewString()
	if _, err := repo.FindPaymentProfile(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.ActivatePayment(ctx, missing, domain.Mandate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepository_LogConfirmationEmail(t *testing.T) {
	repo := repository.NewSQLRepository(testDB)
	evt := ports.ConfirmationEmailEvent{
		LogID:       uuid.NewString(),
		Email:       "jane@example.com",
		Name:        "Jane",
		MemberName:  "John",
		Subject:     services.ConfirmationSubject,
		RequestedAt: time.Now(),
	}

	if err := repo.LogConfirmationEmail(context.Background(), evt); err != nil {
		t.Fatal(err)
	}

	var n int
	err := testDB.QueryRow(
		"SELECT COUNT(*) FROM outbox_events WHERE event_type = $1 AND payload->>'log_id' = $2",
		ports.EventConfirmationEmail, evt.LogID,
	).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected one outbox event, got %d", n)
	}
}
