package peach

// Manifest reports the installed PeachCloud packages and the last hardware configuration.
type Manifest struct {
	// Packages maps package names to installed versions.
	Packages map[string]string `json:"packages"`
	// Hardware is the last saved hardware configuration, nil when setup never completed.
	Hardware *HardwareConfig `json:"hardware"`
}

// NewManifest builds a Manifest. A nil packages map is replaced by an empty one
// so the JSON form always carries an object.
func NewManifest(packages map[string]string, hardware *HardwareConfig) *Manifest {
	if packages == nil {
		packages = make(map[string]string)
	}

	return &Manifest{
		Packages: packages,
		Hardware: hardware,
	}
}
