package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deskctl/config"
)

var _ = Describe("Block validation", func() {

	DescribeTable("computer",
		func(c config.ComputerConfig, errSubstring string) {
			c.Defaults()
			err := c.Validate()
			if errSubstring == "" {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(ContainSubstring(errSubstring)))
			}
		},
		Entry("defaults", config.ComputerConfig{}, ""),
		Entry("custom name", config.ComputerConfig{Name: "desk_2"}, ""),
		Entry("name with dash", config.ComputerConfig{Name: "desk-2"}, "invalid name"),
		Entry("name starting with digit", config.ComputerConfig{Name: "2desk"}, "invalid name"),
		Entry("unparsable delay", config.ComputerConfig{DoubleClickDelay: "fast"}, "invalid double_click_delay"),
		Entry("negative delay", config.ComputerConfig{DoubleClickDelay: "-5ms"}, "must be positive"),
	)

	DescribeTable("backend",
		func(b config.BackendConfig, errSubstring string) {
			b.Defaults()
			err := b.Validate()
			if errSubstring == "" {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(ContainSubstring(errSubstring)))
			}
		},
		Entry("defaults", config.BackendConfig{}, ""),
		Entry("browser", config.BackendConfig{Type: "browser", Browser: "webkit"}, ""),
		Entry("unknown type", config.BackendConfig{Type: "wayland"}, "unknown type"),
		Entry("unknown browser", config.BackendConfig{Browser: "netscape"}, "invalid browser"),
		Entry("negative size", config.BackendConfig{Width: -1}, "must be positive"),
		Entry("negative screens", config.BackendConfig{Screens: -2}, "must not be negative"),
		Entry("endpoint with firefox", config.BackendConfig{Browser: "firefox", Endpoint: "ws://x"}, "only supported for the chromium"),
	)

	DescribeTable("storage",
		func(s config.StorageConfig, errSubstring string) {
			s.Defaults()
			err := s.Validate()
			if errSubstring == "" {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(ContainSubstring(errSubstring)))
			}
		},
		Entry("memory", config.StorageConfig{}, ""),
		Entry("sqlite", config.StorageConfig{Backend: "sqlite"}, ""),
		Entry("unknown", config.StorageConfig{Backend: "redis"}, "unknown backend"),
	)

	DescribeTable("server",
		func(s config.ServerConfig, errSubstring string) {
			s.Defaults()
			err := s.Validate()
			if errSubstring == "" {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(ContainSubstring(errSubstring)))
			}
		},
		Entry("stdio", config.ServerConfig{}, ""),
		Entry("websocket", config.ServerConfig{Transport: "websocket"}, ""),
		Entry("websocket with bad address", config.ServerConfig{Transport: "websocket", Address: "nowhere"}, "invalid address"),
		Entry("unknown transport", config.ServerConfig{Transport: "grpc"}, "unknown transport"),
	)
})
