package model

type InstantiateRequest struct {
	Admin    string `json:"admin"`
	MaxStats int    `json:"max_stats"`
	Entropy  string `json:"entropy"`
}

type InstantiateResponse struct{}

type AddMintersRequest struct {
	Minters []string `json:"minters"`
}

type AddMintersResponse struct{}

type ChangeAdminRequest struct {
	Address string `json:"address"`
}

type ChangeAdminResponse struct{}

type RevokePermitRequest struct {
	PermitName string `json:"permit_name"`
}

type RevokePermitResponse struct{}
