package handler

import (
	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	FullName              string `json:"full_name"              validate:"required,min=2"`
	Email                 string `json:"email"                  validate:"required,email"`
	PhoneNumber           string `json:"phone_number"           validate:"required,min=10"`
	Address               string `json:"address"                validate:"required,min=10"`
	Age                   int    `json:"age"                    validate:"required,gte=1,lte=120"`
	Password              string `json:"password"               validate:"required,min=6"`
	Role                  string `json:"role"                   validate:"omitempty,oneof=admin distributor"`
	AdditionalInformation string `json:"additional_information"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type authResponse struct {
	tokenResponse
	User domain.User `json:"user"`
}

type usersResponse struct {
	Users []domain.User `json:"users"`
}

type profileResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func toTokenResponse(pair ports.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresIn:  pair.AccessExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		tokenResponse: toTokenResponse(res.Tokens),
		User:          res.User,
	}
}

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		FullName:              req.FullName,
		Email:                 req.Email,
		PhoneNumber:           req.PhoneNumber,
		Address:               req.Address,
		Age:                   req.Age,
		Password:              req.Password,
		Role:                  req.Role,
		AdditionalInformation: req.AdditionalInformation,
	}
}
