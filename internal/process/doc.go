// Package process manages process groups for external tools so that a
// cancelled run does not leave the browser or rasterizer children behind.
package process
