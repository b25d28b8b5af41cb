// Package consts holds build-time values
package consts

// Version is set at build time with -ldflags "-X github.com/GonzaloRizzo/beancount-itau-importer/consts.Version=..."
var Version = "dev"
