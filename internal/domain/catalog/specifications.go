package catalog

// Specifications holds the optional free-text technical data of a product.
// Every field is independent; none is validated beyond its length.
type Specifications struct {
	BuiltInInterface          string `json:"built_in_interface,omitempty"`
	Communication             string `json:"communication,omitempty"`
	CompatibleSoftwarePackage string `json:"compatible_software_package,omitempty"`
	ControlMethod             string `json:"control_method,omitempty"`
	Dimensions                string `json:"dimensions,omitempty"`
	DisplayColor              string `json:"display_color,omitempty"`
	DisplayDevice             string `json:"display_device,omitempty"`
	DisplaySize               string `json:"display_size,omitempty"`
	DynamicBrake              string `json:"dynamic_brake,omitempty"`
	EncoderResolution         string `json:"encoder_resolution,omitempty"`
	EncoderType               string `json:"encoder_type,omitempty"`
	ExternalDimensions        string `json:"external_dimensions,omitempty"`
	InputFrequency            string `json:"input_frequency,omitempty"`
	InputVoltage              string `json:"input_voltage,omitempty"`
	MaximumCurrent            string `json:"maximum_current,omitempty"`
	MaximumSpeed              string `json:"maximum_speed,omitempty"`
	MaximumTorque             string `json:"maximum_torque,omitempty"`
	OutputFrequencyRange      string `json:"output_frequency_range,omitempty"`
	OutputType                string `json:"output_type,omitempty"`
	OutputVoltage             string `json:"output_voltage,omitempty"`
	PLCInput                  string `json:"plc_input,omitempty"`
	PLCOutput                 string `json:"plc_output,omitempty"`
	PowerSupplyCapacity       string `json:"power_supply_capacity,omitempty"`
	PowerSupplyInput          string `json:"power_supply_input,omitempty"`
	RatedCurrent              string `json:"rated_current,omitempty"`
	RatedOutput               string `json:"rated_output,omitempty"`
	RatedOutputCurrent        string `json:"rated_output_current,omitempty"`
	RatedOutputPower          string `json:"rated_output_power,omitempty"`
	RatedSpeed                string `json:"rated_speed,omitempty"`
	RatedTorque               string `json:"rated_torque,omitempty"`
	RatedVoltage              string `json:"rated_voltage,omitempty"`
	Resolution                string `json:"resolution,omitempty"`
	ScreenSize                string `json:"screen_size,omitempty"`
	ServoAmplifier            string `json:"servo_amplifier,omitempty"`
	ServoMotor                string `json:"servo_motor,omitempty"`
	SupplyVoltage             string `json:"supply_voltage,omitempty"`
	Weight                    string `json:"weight,omitempty"`
}

const maxSpecificationLength = 255

// fields lists every specification value paired with its JSON name
func (s *Specifications) fields() map[string]string {
	return map[string]string{
		"built_in_interface":          s.BuiltInInterface,
		"communication":               s.Communication,
		"compatible_software_package": s.CompatibleSoftwarePackage,
		"control_method":              s.ControlMethod,
		"dimensions":                  s.Dimensions,
		"display_color":               s.DisplayColor,
		"display_device":              s.DisplayDevice,
		"display_size":                s.DisplaySize,
		"dynamic_brake":               s.DynamicBrake,
		"encoder_resolution":          s.EncoderResolution,
		"encoder_type":                s.EncoderType,
		"external_dimensions":         s.ExternalDimensions,
		"input_frequency":             s.InputFrequency,
		"input_voltage":               s.InputVoltage,
		"maximum_current":             s.MaximumCurrent,
		"maximum_speed":               s.MaximumSpeed,
		"maximum_torque":              s.MaximumTorque,
		"output_frequency_range":      s.OutputFrequencyRange,
		"output_type":                 s.OutputType,
		"output_voltage":              s.OutputVoltage,
		"plc_input":                   s.PLCInput,
		"plc_output":                  s.PLCOutput,
		"power_supply_capacity":       s.PowerSupplyCapacity,
		"power_supply_input":          s.PowerSupplyInput,
		"rated_current":               s.RatedCurrent,
		"rated_output":                s.RatedOutput,
		"rated_output_current":        s.RatedOutputCurrent,
		"rated_output_power":          s.RatedOutputPower,
		"rated_speed":                 s.RatedSpeed,
		"rated_torque":                s.RatedTorque,
		"rated_voltage":               s.RatedVoltage,
		"resolution":                  s.Resolution,
		"screen_size":                 s.ScreenSize,
		"servo_amplifier":             s.ServoAmplifier,
		"servo_motor":                 s.ServoMotor,
		"supply_voltage":              s.SupplyVoltage,
		"weight":                      s.Weight,
	}
}

// NonEmpty returns only the specification values that are set
func (s *Specifications) NonEmpty() map[string]string {
	out := make(map[string]string)
	for k, v := range s.fields() {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// invalidField returns the name of the first field that is too long, or ""
func (s *Specifications) invalidField() string {
	for k, v := range s.fields() {
		if len(v) > maxSpecificationLength {
			return k
		}
	}
	return ""
}
