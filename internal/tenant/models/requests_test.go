package models

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "gymdesk/pkg/domain-errors"
)

type RegisterTenantRequestSuite struct {
	suite.Suite
}

func TestRegisterTenantRequestSuite(t *testing.T) {
	suite.Run(t, new(RegisterTenantRequestSuite))
}

func (s *RegisterTenantRequestSuite) validRequest() *RegisterTenantRequest {
	return &RegisterTenantRequest{
		Name:          "Iron Temple",
		Location:      "Colombo",
		Address:       "12 Galle Road",
		Phone:         "0712345678",
		Email:         "owner@irontemple.lk",
		ContactPerson: "Nimal Perera",
		Username:      "irontemple",
		Password:      "s3cret!",
	}
}

func (s *RegisterTenantRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := s.validRequest()
		req.Normalize()
		s.NoError(req.Validate())
	})

	s.Run("location and address are optional", func() {
		req := s.validRequest()
		req.Location = ""
		req.Address = ""
		s.NoError(req.Validate())
	})

	s.Run("each mandatory field is reported", func() {
		req := &RegisterTenantRequest{}
		err := req.Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		for _, field := range []string{"name", "phone", "email", "contact_person", "username", "password"} {
			s.Contains(err.Error(), field+" is required")
		}
	})

	s.Run("blank fields are rejected after normalization", func() {
		req := s.validRequest()
		req.Name = "   "
		req.Username = "\t"
		req.Normalize()

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "name is required")
		s.Contains(err.Error(), "username is required")
	})

	s.Run("whitespace-only password is rejected", func() {
		req := s.validRequest()
		req.Password = "      "
		req.Normalize()

		err := req.Validate()
		s.Require().Error(err)
		s.Equal("password is required", err.Error())
	})
}

func (s *RegisterTenantRequestSuite) TestNormalizeKeepsPassword() {
	req := s.validRequest()
	req.Name = "  Iron Temple  "
	req.Password = " padded "
	req.Normalize()

	s.Equal("Iron Temple", req.Name)
	s.Equal(" padded ", req.Password)
}

func (s *RegisterTenantRequestSuite) TestProfiles() {
	req := s.validRequest()

	tp := req.TenantProfile()
	s.Equal(req.Name, tp.Name)
	s.Equal(req.Phone, tp.Phone)
	s.Equal(req.ContactPerson, tp.ContactPerson)

	ap := req.AdminProfile()
	s.Equal(req.ContactPerson, ap.Name)
	s.Equal(req.Email, ap.Email)
	s.Equal(req.Phone, ap.Phone)
}
