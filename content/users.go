package content

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// passwordCost is the bcrypt cost for new hashes.
var passwordCost = bcrypt.DefaultCost

const emailTaken = "A user with this email already exists"

// Users is the repository for accounts.
type Users struct {
	c collection[User]
	s *Store
}

// All returns every user in store order.
func (r *Users) All(ctx context.Context) ([]User, error) {
	return r.c.all(ctx)
}

// FindByID returns the user and whether it exists.
func (r *Users) FindByID(ctx context.Context, id string) (User, bool, error) {
	return r.c.get(ctx, id)
}

// FindByEmail returns every user registered under email (zero or one in
// practice). The comparison is case-insensitive.
func (r *Users) FindByEmail(ctx context.Context, email string) ([]User, error) {
	return r.c.find(ctx, "email", normalizeEmail(email))
}

// Create validates u, assigns its id and timestamps, hashes the plaintext
// password and inserts it. On success u holds the stored record.
func (r *Users) Create(ctx context.Context, u *User) error {
	if err := u.validate(); err != nil {
		return err
	}
	u.prepare(r.s.now())
	if err := guardUnique(ctx, r.c, "email", u.Email, "", emailTaken); err != nil {
		return err
	}
	hash, err := hashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hash
	return r.c.insert(ctx, *u)
}

// Update merges p into the stored user.
func (r *Users) Update(ctx context.Context, id string, p UserUpdate) (User, error) {
	u, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, notFound("User")
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return User{}, missingFields("user", []string{"name"})
		}
		u.Name = *p.Name
	}
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		if !strings.Contains(email, "@") {
			return User{}, invalid("user: invalid email %q", *p.Email)
		}
		if email != u.Email {
			if err := guardUnique(ctx, r.c, "email", email, u.ID, emailTaken); err != nil {
				return User{}, err
			}
		}
		u.Email = email
	}
	if p.Password != nil {
		if len(*p.Password) < 6 {
			return User{}, invalid("user: password must be at least 6 characters")
		}
		hash, err := hashPassword(*p.Password)
		if err != nil {
			return User{}, err
		}
		u.Password = hash
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	u.UpdatedAt = stamp(r.s.now())

	if err := r.c.replace(ctx, "User", u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Delete removes the user. Posts, papers and comments that reference it
// are left as they are.
func (r *Users) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, "User", id)
}

// Authenticate returns the user whose email and password match.
func (r *Users) Authenticate(ctx context.Context, email, password string) (User, error) {
	users, err := r.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, ErrInvalidCredentials
	}
	u := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return "", invalid("user: %v", err)
	}
	return string(hash), nil
}
