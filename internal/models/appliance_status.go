package models

// ApplianceStatus is a snapshot decoded from one valid status frame.
// Temperatures are always Celsius.
type ApplianceStatus struct {
	Mode               OperationMode `json:"mode"`
	CurrentTemperature float64       `json:"current_temp_c"`
	TargetTemperature  float64       `json:"target_temp_c"`
	GuardFlameOn       bool          `json:"guard_flame_on"`
	AuxOn              bool          `json:"aux_on"`
	Igniting           bool          `json:"igniting"`
	ShuttingDown       bool          `json:"shutting_down"`
}
