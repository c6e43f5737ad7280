package request

type CreateProject struct {
	Name          string `json:"name" validate:"required,slug"`
	HetznerToken  string `json:"hetzner_token"`
	SSHUser       string `json:"ssh_user"`
	SSHPort       int    `json:"ssh_port" validate:"omitempty,min=1,max=65535"`
	SSHPrivateKey string `json:"ssh_private_key"`
	SSHPassphrase string `json:"ssh_passphrase"`
	MaxServers    int    `json:"max_servers" validate:"omitempty,min=0"`
	BaseDomain    string `json:"base_domain" validate:"omitempty,fqdn"`
}

type UpdateProject struct {
	HetznerToken  *string `json:"hetzner_token"`
	SSHUser       *string `json:"ssh_user"`
	SSHPort       *int    `json:"ssh_port" validate:"omitempty,min=1,max=65535"`
	SSHPrivateKey *string `json:"ssh_private_key"`
	SSHPassphrase *string `json:"ssh_passphrase"`
	MaxServers    *int    `json:"max_servers" validate:"omitempty,min=0"`
	BaseDomain    *string `json:"base_domain" validate:"omitempty,fqdn"`
	Active        *bool   `json:"active"`
}
