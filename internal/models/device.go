package models

// Device is a peer reported by the backend's discovery.
type Device struct {
	Fingerprint string `json:"fingerprint"`
	Alias       string `json:"alias"`
	IPAddress   string `json:"ip_address"`
	Port        int    `json:"port"`
	Protocol    string `json:"protocol"`
	DeviceType  string `json:"deviceType,omitempty"`
	DeviceModel string `json:"deviceModel,omitempty"`
	Version     string `json:"version,omitempty"`
	Download    *bool  `json:"download,omitempty"`
}

// Merge overlays the fields update carries on d. An absent Download keeps the
// current value, an explicit false clears it.
func (d Device) Merge(update Device) Device {
	if update.Fingerprint != "" {
		d.Fingerprint = update.Fingerprint
	}
	if update.Alias != "" {
		d.Alias = update.Alias
	}
	if update.IPAddress != "" {
		d.IPAddress = update.IPAddress
	}
	if update.Port != 0 {
		d.Port = update.Port
	}
	if update.Protocol != "" {
		d.Protocol = update.Protocol
	}
	if update.DeviceType != "" {
		d.DeviceType = update.DeviceType
	}
	if update.DeviceModel != "" {
		d.DeviceModel = update.DeviceModel
	}
	if update.Version != "" {
		d.Version = update.Version
	}
	if update.Download != nil {
		download := *update.Download
		d.Download = &download
	}

	return d
}

// FavoriteDevice is the backend's record of a favorited peer.
type FavoriteDevice struct {
	Fingerprint string `json:"favorite_fingerprint"`
	Alias       string `json:"favorite_alias"`
}

// FavoriteStatus pairs a favorite with its live device, if one was scanned.
type FavoriteStatus struct {
	FavoriteDevice
	Device *Device
}

func (fs FavoriteStatus) Online() bool {
	return fs.Device != nil
}
