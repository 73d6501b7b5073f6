package integration_tests

import (
	"github.com/vk/kamelrun/internal/registry"
	"github.com/vk/kamelrun/modules/timer"
)

func timerModule() registry.Module {
	return &timer.Module{}
}
