package clientinfo_test

import (
	"testing"

	"github.com/grafheim/linklytics/internal/clientinfo"
	"github.com/stretchr/testify/assert"
)

const (
	chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariIPhoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
	safariIPadUA    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
)

func TestExtract_UserAgent(t *testing.T) {
	t.Run("classifies desktop browser", func(t *testing.T) {
		info := clientinfo.Extract(chromeDesktopUA, nil)

		assert.Equal(t, "Chrome", info.Browser)
		assert.Equal(t, "Windows", info.OS)
		assert.Equal(t, clientinfo.DeviceDesktop, info.Device)
	})

	t.Run("classifies mobile browser", func(t *testing.T) {
		info := clientinfo.Extract(safariIPhoneUA, nil)

		assert.Equal(t, clientinfo.DeviceMobile, info.Device)
		assert.Equal(t, "iOS", info.OS)
	})

	t.Run("classifies tablet", func(t *testing.T) {
		info := clientinfo.Extract(safariIPadUA, nil)

		assert.Equal(t, clientinfo.DeviceTablet, info.Device)
	})

	t.Run("empty user-agent yields sentinels without error", func(t *testing.T) {
		info := clientinfo.Extract("", nil)

		assert.Equal(t, clientinfo.Unknown, info.Browser)
		assert.Equal(t, clientinfo.Unknown, info.OS)
		assert.Equal(t, clientinfo.DeviceOther, info.Device)
		assert.Equal(t, clientinfo.FallbackIP, info.IP)
	})

	t.Run("garbage user-agent defaults to Other", func(t *testing.T) {
		info := clientinfo.Extract("not a real agent \x00\xff", nil)

		assert.Equal(t, clientinfo.DeviceOther, info.Device)
	})
}

func TestExtract_IP(t *testing.T) {
	t.Run("takes first entry of comma-separated chain", func(t *testing.T) {
		info := clientinfo.Extract("", []clientinfo.Header{
			{Name: "X-Forwarded-For", Value: "203.0.113.5, 70.41.3.18, 150.172.238.178"},
		})

		assert.Equal(t, "203.0.113.5", info.IP)
	})

	t.Run("respects candidate priority order", func(t *testing.T) {
		info := clientinfo.Extract("", []clientinfo.Header{
			{Name: "X-Forwarded-For", Value: ""},
			{Name: "X-Real-IP", Value: "198.51.100.7"},
		})

		assert.Equal(t, "198.51.100.7", info.IP)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		info := clientinfo.Extract("", []clientinfo.Header{
			{Name: "X-Forwarded-For", Value: "  203.0.113.5  "},
		})

		assert.Equal(t, "203.0.113.5", info.IP)
	})

	t.Run("falls back to sentinel when no header present", func(t *testing.T) {
		info := clientinfo.Extract("", []clientinfo.Header{})

		assert.Equal(t, "0.0.0.0", info.IP)
	})
}
