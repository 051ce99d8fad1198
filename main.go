// Command patentspike detects filing spikes in semiconductor patent publications.
package main

import (
	"github.com/semiconip/patentspike/cmd"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	iocache.CloseCaching()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
