package request

type RegisterSelfHostedServer struct {
	Name      string `json:"name" validate:"required,slug"`
	PublicIP  string `json:"public_ip" validate:"required,ip"`
	ProjectID string `json:"project_id"`
}

type PowerAction struct {
	Action string `json:"action" validate:"required,oneof=poweron poweroff reboot"`
}
