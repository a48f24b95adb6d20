package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

// OutboxChannel is the NOTIFY channel the relay listens on.
const OutboxChannel = "outbox_channel"

type SQLRepository struct {
	db *sql.DB
}

var _ ports.RegistrationRepository = (*SQLRepository)(nil)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CreateRegistration inserts the guardian, signature, member, emergency
// contact and contract acceptance rows in one transaction. Nothing is kept
// when any insert fails.
func (r *SQLRepository) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	g := reg.Guardian
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, address, post_code, home_phone, mobile_phone,
			work_phone, relationship, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.Name, g.Email, g.Address, g.PostCode, g.HomePhone, g.MobilePhone,
		g.WorkPhone, g.Relationship, g.PaymentStatus, g.CreatedAt,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert user", Err: err}
	}

	s := reg.Signature
	_, err = tx.ExecContext(ctx,
		"INSERT INTO signatures (user_id, signature_data, ip_address, user_agent) VALUES ($1, $2, $3, $4)",
		g.ID, s.Data, s.IPAddress, s.UserAgent,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert signature", Err: err}
	}

	m := reg.Member
	_, err = tx.ExecContext(ctx, `
		INSERT INTO members (user_id, name, package, package_quantity, activity, day, time,
			date_of_birth, gender, sibling_attends, has_medical_conditions,
			medical_conditions_details, has_allergies, allergies_details, has_injury,
			injury_details, photo_consent, first_aid_consent, membership_option, branch_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		g.ID, m.Name, m.Package, m.PackageQuantity, m.Activity, m.Day, m.Time,
		m.DateOfBirth, m.Gender, m.SiblingAttends, m.HasMedicalConditions,
		m.MedicalConditionsDetails, m.HasAllergies, m.AllergiesDetails, m.HasInjury,
		m.InjuryDetails, m.PhotoConsent, m.FirstAidConsent, m.MembershipOption, m.BranchID,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert member", Err: err}
	}

	e := reg.EmergencyContact
	_, err = tx.ExecContext(ctx, `
		INSERT INTO emergency_contacts (user_id, name, address, post_code, home_phone,
			mobile_phone, work_phone, relationship)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, e.Name, e.Address, e.PostCode, e.HomePhone, e.MobilePhone, e.WorkPhone, e.Relationship,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert emergency contact", Err: err}
	}

	c := reg.ContractAcceptance
	_, err = tx.ExecContext(ctx,
		"INSERT INTO contract_acceptances (user_id, accepted_at, contract_version) VALUES ($1, $2, $3)",
		g.ID, c.AcceptedAt, c.ContractVersion,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert contract acceptance", Err: err}
	}

	return tx.Commit()
}

func (r *SQLRepository) FindMembershipOption(ctx context.Context, userID string) (domain.BillingPlan, error) {
	var plan sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT membership_option FROM members WHERE user_id = $1",
		userID,
	).Scan(&plan)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return domain.BillingPlan(plan.String), nil
}

func (r *SQLRepository) FindPaymentProfile(ctx context.Context, userID string) (*domain.PaymentProfile, error) {
	var (
		p        domain.PaymentProfile
		plan     sql.NullString
		pkg      sql.NullString
		quantity sql.NullInt64
		branch   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.address, u.post_code, m.name,
			m.membership_option, m.package, m.package_quantity, m.branch_id
		FROM users u
		JOIN members m ON m.user_id = u.id
		WHERE u.id = $1`,
		userID,
	).Scan(&p.UserID, &p.Name, &p.Email, &p.Address, &p.PostCode, &p.MemberName,
		&plan, &pkg, &quantity, &branch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Plan = domain.BillingPlan(plan.String)
	p.Package = pkg.String
	p.PackageQuantity = int(quantity.Int64)
	p.BranchID = branch.String
	return &p, nil
}

func (r *SQLRepository) ActivatePayment(ctx context.Context, userID string, mandate domain.Mandate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET gocardless_mandate_id = $2, gocardless_customer_id = $3, payment_status = $4
		WHERE id = $1`,
		userID, mandate.MandateID, mandate.CustomerID, domain.PaymentActive,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LogConfirmationEmail records the email, writes its outbox event and
// notifies the relay, all in one transaction. The notification is delivered
// only on commit.
func (r *SQLRepository) LogConfirmationEmail(ctx context.Context, evt ports.ConfirmationEmailEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO email_logs (id, recipient, subject, member_name, status, created_at)
		VALUES ($1, $2, $3, $4, 'queued', $5)`,
		evt.LogID, evt.Email, evt.Subject, evt.MemberName, evt.RequestedAt,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert email log", Err: err}
	}

	eventID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO outbox_events (id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())",
		eventID, ports.EventConfirmationEmail, payload,
	)
	if err != nil {
		return &domain.StoreError{Op: "insert outbox event", Err: err}
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", OutboxChannel, eventID); err != nil {
		return &domain.StoreError{Op: "notify relay", Err: err}
	}

	return tx.Commit()
}
