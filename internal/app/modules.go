package app

import (
	"github.com/vk/kamelrun/internal/registry"
	"github.com/vk/kamelrun/modules/http_client"
	"github.com/vk/kamelrun/modules/logsink"
	"github.com/vk/kamelrun/modules/socketio"
	"github.com/vk/kamelrun/modules/stream"
	"github.com/vk/kamelrun/modules/timer"
)

// coreModules is the definitive list of all components compiled into the
// kamelrun binary.
var coreModules = []registry.Module{
	&timer.Module{},
	&logsink.Module{},
	&stream.Module{},
	&http_client.Module{},
	&socketio.Module{},
}
