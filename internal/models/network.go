package models

type NetworkInfo struct {
	InterfaceName string `json:"interface_name"`
	IPAddress     string `json:"ip_address"`
	Number        string `json:"number"`
	NumberInt     int    `json:"number_int"`
}

type NetworkInterface struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
	Up        bool     `json:"up"`
}

// BackendConfig mirrors get-backend-config / set-backend-config.
type BackendConfig struct {
	Alias          string `json:"alias"`
	Port           int    `json:"port"`
	Protocol       string `json:"protocol"`
	DownloadFolder string `json:"downloadFolder"`
	Pin            string `json:"pin,omitempty"`
	AutoAccept     bool   `json:"autoAccept"`
}
