package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichSpikes(t *testing.T) {
	alerts := []SpikeAlert{
		{Category: "HBM/고대역폭메모리", SpikeRatioPct: 300, Signal: StrategicSpike},
		{Category: "EUV 리소그래피", SpikeRatioPct: 0, Signal: NormalSignal},
	}
	got := EnrichSpikes("삼성전자", alerts)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, "삼성전자", got[1].Company)
	assert.Equal(t, "EUV 리소그래피", got[1].Category)
}

func TestActionableSpikes(t *testing.T) {
	alerts := []SpikeAlert{
		{Category: "a", Signal: StrategicSpike},
		{Category: "b", Signal: NormalSignal},
		{Category: "c", Signal: EmergingSignal},
		{Category: "d", Signal: NewActivity},
	}
	got := ActionableSpikes(alerts)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Category)
	assert.Equal(t, "c", got[1].Category)
	assert.Equal(t, 1, CountSignal(alerts, StrategicSpike))
	assert.Nil(t, ActionableSpikes(nil))
}

func TestSignalColor(t *testing.T) {
	assert.Equal(t, StrategicSpikeColor, SignalColor(StrategicSpike))
	assert.Equal(t, EmergingSignalColor, SignalColor(EmergingSignal))
	assert.Equal(t, NewActivityColor, SignalColor(NewActivity))
	assert.Equal(t, NormalColor, SignalColor(NormalSignal))
	assert.Equal(t, NormalColor, SignalColor("unknown"))
}
