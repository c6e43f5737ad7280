package request

type RunOperation struct {
	Kind        string `json:"kind" validate:"required,oneof=backup update deploy"`
	InitiatorID string `json:"initiator_id" validate:"required"`
}
