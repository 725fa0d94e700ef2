package http

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type AccountView struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Frozen    bool   `json:"frozen"`
	Protected bool   `json:"protected"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Status string `json:"status"`
	Data   struct {
		AccountID string `json:"account_id"`
	} `json:"data"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token     string      `json:"token"`
		ExpiresAt string      `json:"expires_at"`
		Account   AccountView `json:"account"`
	} `json:"data"`
}

type ListAccountsResponse struct {
	Status string        `json:"status"`
	Data   []AccountView `json:"data"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type AccountResponse struct {
	Status string      `json:"status"`
	Data   AccountView `json:"data"`
}

type DeleteAccountResponse struct {
	Status string `json:"status"`
	Data   struct {
		AccountID string `json:"account_id"`
	} `json:"data"`
}
