package backendfake

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/tenants"
)

const (
	detailBadCredentials = "이메일 또는 비밀번호가 올바르지 않습니다."
	detailEmailTaken     = "이미 등록된 이메일입니다."
	detailSubdomainTaken = "이미 사용 중인 서브도메인입니다."
)

func (b *Backend) handleSignupUser(w http.ResponseWriter, r *http.Request) {
	var in api.SignupUserRequest
	if !decodeBody(w, r, &in) {
		return
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	for _, u := range b.users {
		if u.user.Email == in.Email {
			writeDetail(w, http.StatusBadRequest, detailEmailTaken)
			return
		}
	}
	record := &userRecord{
		user: api.User{
			ID:        uuid.NewString(),
			Email:     in.Email,
			FullName:  in.FullName,
			IsActive:  true,
			CreatedAt: b.now(),
		},
		passwordHash: hash,
	}
	b.users = append(b.users, record)
	writeJSON(w, http.StatusCreated, record.user)
}

func (b *Backend) handleSignupInstructor(w http.ResponseWriter, r *http.Request) {
	var in api.SignupInstructorRequest
	if !decodeBody(w, r, &in) {
		return
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	for _, existing := range b.instructors {
		if existing.instructor.Email == in.Email {
			writeDetail(w, http.StatusBadRequest, detailEmailTaken)
			return
		}
		if existing.instructor.Subdomain == in.Subdomain {
			writeDetail(w, http.StatusBadRequest, detailSubdomainTaken)
			return
		}
	}
	record := &instructorRecord{
		instructor: api.Instructor{
			ID:         uuid.NewString(),
			Email:      in.Email,
			FullName:   in.FullName,
			Subdomain:  in.Subdomain,
			StoreName:  in.StoreName,
			Bio:        in.Bio,
			IsActive:   true,
			IsVerified: false,
			CreatedAt:  b.now(),
		},
		passwordHash: hash,
	}
	b.instructors = append(b.instructors, record)
	writeJSON(w, http.StatusCreated, record.instructor)
}

func (b *Backend) handleLoginUser(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.RLock()
	var found *userRecord
	for _, u := range b.users {
		if u.user.Email == in.Email {
			found = u
		}
	}
	b.lock.RUnlock()

	if found == nil || !passwordMatches(found.passwordHash, in.Password) {
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
		return
	}
	b.writeToken(w, found.user.ID, RoleUser, "")
}

func (b *Backend) handleLoginInstructor(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.RLock()
	var found *instructorRecord
	for _, existing := range b.instructors {
		if existing.instructor.Email == in.Email {
			found = existing
		}
	}
	b.lock.RUnlock()

	if found == nil || !passwordMatches(found.passwordHash, in.Password) {
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
		return
	}
	b.writeToken(w, found.instructor.ID, RoleInstructor, found.instructor.Subdomain)
}

func (b *Backend) writeToken(w http.ResponseWriter, subject, role, tenant string) {
	token, err := b.IssueToken(subject, role, tenant, b.tokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, api.Token{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) handleGetMeInstructor(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	record := b.instructorByID(claimsFrom(r).Subject)
	if record == nil {
		writeDetail(w, http.StatusNotFound, "Instructor not found")
		return
	}
	writeJSON(w, http.StatusOK, record.instructor)
}

func (b *Backend) handleUpdateMeInstructor(w http.ResponseWriter, r *http.Request) {
	var in api.InstructorUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	record := b.instructorByID(claimsFrom(r).Subject)
	if record == nil {
		writeDetail(w, http.StatusNotFound, "Instructor not found")
		return
	}
	if in.Subdomain != nil && *in.Subdomain != record.instructor.Subdomain {
		if b.instructorBySubdomain(*in.Subdomain) != nil {
			writeDetail(w, http.StatusBadRequest, detailSubdomainTaken)
			return
		}
		record.instructor.Subdomain = *in.Subdomain
	}

	inst := &record.instructor
	setIf(&inst.FullName, in.FullName)
	setIf(&inst.StoreName, in.StoreName)
	setIf(&inst.Email, in.Email)
	setPtrIf(&inst.Bio, in.Bio)
	setPtrIf(&inst.ProfileImage, in.ProfileImage)
	setPtrIf(&inst.CompanyName, in.CompanyName)
	setPtrIf(&inst.CEOName, in.CEOName)
	setPtrIf(&inst.PrivacyOfficer, in.PrivacyOfficer)
	setPtrIf(&inst.BusinessNumber, in.BusinessNumber)
	setPtrIf(&inst.SalesNumber, in.SalesNumber)
	setPtrIf(&inst.Contact, in.Contact)
	setPtrIf(&inst.BusinessHours, in.BusinessHours)
	setPtrIf(&inst.Address, in.Address)
	writeJSON(w, http.StatusOK, record.instructor)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setPtrIf[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func storeInfo(inst api.Instructor) tenants.Tenant {
	return tenants.Tenant{
		StoreName:    inst.StoreName,
		FullName:     inst.FullName,
		Bio:          inst.Bio,
		ProfileImage: inst.ProfileImage,
		Subdomain:    inst.Subdomain,
		Footer: tenants.Footer{
			CompanyName:    inst.CompanyName,
			CEOName:        inst.CEOName,
			PrivacyOfficer: inst.PrivacyOfficer,
			BusinessNumber: inst.BusinessNumber,
			SalesNumber:    inst.SalesNumber,
			Contact:        inst.Contact,
			BusinessHours:  inst.BusinessHours,
			Address:        inst.Address,
		},
	}
}
