package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/identity-access/account-service/application"
	"tasktrack/contexts/identity-access/account-service/domain/entities"
	httptransport "tasktrack/contexts/identity-access/account-service/transport/http"
	"tasktrack/internal/shared/access"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.RegisterResponse, error) {
	account, err := h.Service.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return httptransport.RegisterResponse{}, err
	}
	resp := httptransport.RegisterResponse{Status: "success"}
	resp.Data.AccountID = account.AccountID
	return resp, nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	session, err := h.Service.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	resp := httptransport.LoginResponse{Status: "success"}
	resp.Data.Token = session.Token
	resp.Data.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
	resp.Data.Account = accountView(session.Account)
	return resp, nil
}

// VerifyHandler resolves a bearer token into a live principal.
func (h Handler) VerifyHandler(ctx context.Context, token string) (access.Principal, error) {
	return h.Service.Verify(ctx, strings.TrimSpace(token))
}

func (h Handler) ListAccountsHandler(ctx context.Context, principal access.Principal) (httptransport.ListAccountsResponse, error) {
	accounts, err := h.Service.ListAccounts(ctx, principal)
	if err != nil {
		return httptransport.ListAccountsResponse{}, err
	}
	resp := httptransport.ListAccountsResponse{
		Status: "success",
		Data:   make([]httptransport.AccountView, 0, len(accounts)),
	}
	for _, account := range accounts {
		resp.Data = append(resp.Data, accountView(account))
	}
	return resp, nil
}

func (h Handler) ChangeRoleHandler(ctx context.Context, principal access.Principal, targetID string, req httptransport.ChangeRoleRequest) (httptransport.AccountResponse, error) {
	account, err := h.Service.ChangeRole(ctx, principal, strings.TrimSpace(targetID), access.Role(req.Role))
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{Status: "success", Data: accountView(account)}, nil
}

func (h Handler) ToggleFreezeHandler(ctx context.Context, principal access.Principal, targetID string) (httptransport.AccountResponse, error) {
	account, err := h.Service.ToggleFreeze(ctx, principal, strings.TrimSpace(targetID))
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{Status: "success", Data: accountView(account)}, nil
}

func (h Handler) DeleteAccountHandler(ctx context.Context, principal access.Principal, targetID string) (httptransport.DeleteAccountResponse, error) {
	targetID = strings.TrimSpace(targetID)
	if err := h.Service.DeleteAccount(ctx, principal, targetID); err != nil {
		return httptransport.DeleteAccountResponse{}, err
	}
	resp := httptransport.DeleteAccountResponse{Status: "success"}
	resp.Data.AccountID = targetID
	return resp, nil
}

// accountView maps the entity to its outward shape. The password hash is
// deliberately unreachable from here.
func accountView(account entities.Account) httptransport.AccountView {
	return httptransport.AccountView{
		AccountID: account.AccountID,
		Email:     account.Email,
		Username:  account.Username,
		Role:      string(account.Role),
		Frozen:    account.Frozen,
		Protected: account.Protected,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
