package api

import (
	"context"

	"github.com/0w0mewo/lsctl/internal/localsend/constants"
	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (c *Client) Favorites(ctx context.Context) ([]models.FavoriteDevice, error) {
	var favs []models.FavoriteDevice
	err := c.decodeOK(ctx, request{method: fiber.MethodGet, path: constants.FavoritesPath}, &favs)
	return favs, err
}

func (c *Client) AddFavorite(ctx context.Context, fav models.FavoriteDevice) error {
	return c.decodeOK(ctx, request{
		method: fiber.MethodPost,
		path:   constants.FavoritesPath,
		json:   &fav,
	}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, fingerprint string) error {
	return c.decodeOK(ctx, request{
		method: fiber.MethodDelete,
		path:   constants.FavoritePath(fingerprint),
	}, nil)
}

// ScanNow triggers a fresh discovery round and returns what it found.
func (c *Client) ScanNow(ctx context.Context) ([]models.Device, error) {
	var devs []models.Device
	err := c.decodeOK(ctx, request{method: fiber.MethodGet, path: constants.ScanNowPath}, &devs)
	return devs, err
}

// ScanCurrent returns the backend's current discovery results.
func (c *Client) ScanCurrent(ctx context.Context) ([]models.Device, error) {
	var devs []models.Device
	err := c.decodeOK(ctx, request{method: fiber.MethodGet, path: constants.ScanCurrentPath}, &devs)
	return devs, err
}

func (c *Client) NetworkInfo(ctx context.Context) ([]models.NetworkInfo, error) {
	var infos []models.NetworkInfo
	err := c.decodeOK(ctx, request{method: fiber.MethodGet, path: constants.NetworkInfoPath}, &infos)
	return infos, err
}

func (c *Client) NetworkInterfaces(ctx context.Context) ([]models.NetworkInterface, error) {
	var intfs []models.NetworkInterface
	err := c.decodeOK(ctx, request{method: fiber.MethodGet, path: constants.NetworkInterfacesPath}, &intfs)
	return intfs, err
}

func (c *Client) BackendConfig(ctx context.Context) (models.BackendConfig, error) {
	var conf models.BackendConfig
	err := c.decodeOK(ctx, request{method: fiber.MethodGet, path: constants.GetBackendConfigPath}, &conf)
	return conf, err
}

func (c *Client) SetBackendConfig(ctx context.Context, conf models.BackendConfig) error {
	return c.decodeOK(ctx, request{
		method: fiber.MethodPost,
		path:   constants.SetBackendConfigPath,
		json:   &conf,
	}, nil)
}

// Ping reports whether the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{method: fiber.MethodGet, path: constants.GetBackendConfigPath})
	return err
}
