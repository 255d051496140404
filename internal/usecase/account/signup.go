package account

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type SignupInput struct {
	Email       string
	Password    string
	Role        string
	Name        string
	Phone       string
	DateOfBirth string
}

// Session is what signup and login hand back to the client.
type Session struct {
	User  *models.User
	Token string
}

// Signup creates the user and, for patients and doctors, the profile in one
// write. Doctors start with placeholder profile values.
type Signup struct {
	users      user.Repository
	tokens     *auth.TokenService
	audit      *audit.Dispatcher
	allowAdmin bool
}

func NewSignup(
	users user.Repository,
	tokens *auth.TokenService,
	audit *audit.Dispatcher,
	allowAdmin bool,
) *Signup {
	return &Signup{
		users:      users,
		tokens:     tokens,
		audit:      audit,
		allowAdmin: allowAdmin,
	}
}

var (
	errEmailRequired = httperr.Validation(httperr.CodeInvalidRequest, "A valid email is required.")
	errNameRequired  = httperr.Validation(httperr.CodeInvalidRequest, "Name is required.")
)

func (uc *Signup) Execute(ctx context.Context, in SignupInput) (*Session, error) {
	email := validators.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errEmailRequired
	}
	if len(in.Password) < user.MinPasswordLength {
		return nil, user.ErrWeakPassword
	}

	r, ok := role.Parse(in.Role)
	if !ok {
		return nil, user.ErrInvalidRole
	}
	if r == role.Admin && !uc.allowAdmin {
		return nil, user.ErrRoleNotAllowed
	}

	name := strings.TrimSpace(in.Name)
	if name == "" && r != role.Admin {
		return nil, errNameRequired
	}

	birthday, ok := validators.ParseBirthday(in.DateOfBirth)
	if !ok {
		return nil, user.ErrInvalidBirthday
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         string(r),
	}

	var (
		patient *models.PatientProfile
		doctor  *models.DoctorProfile
	)
	switch r {
	case role.Patient:
		patient = &models.PatientProfile{
			Name:             name,
			Phone:            in.Phone,
			DateOfBirth:      birthday,
			EmergencyContact: in.Phone,
		}
	case role.Doctor:
		doctor = &models.DoctorProfile{Name: name}
	}

	if err := uc.users.CreateUser(ctx, u, patient, doctor); err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(u.ID, r)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(u.ID),
		Action:   audit.ActionUserCreated,
		Entity:   "user",
		EntityID: audit.Ref(u.ID),
		Metadata: map[string]any{"role": u.Role},
	})

	return &Session{User: u, Token: token}, nil
}
