package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrossForNet_CardModel(t *testing.T) {
	card := FeeModel{Rate: 0.029, Flat: 30}

	// $100.00 net: (10000 + 30) / 0.971 = 10329.55..., rounds to 10330
	gross, fee := GrossForNet(10000, card)
	assert.Equal(t, int64(10330), gross)
	assert.Equal(t, int64(330), fee)
}

func TestGrossForNet_PeerModel(t *testing.T) {
	peer := FeeModel{Rate: 0.019, Flat: 10}

	// $50.00 net: (5000 + 10) / 0.981 = 5107.03..., rounds to 5107
	gross, fee := GrossForNet(5000, peer)
	assert.Equal(t, int64(5107), gross)
	assert.Equal(t, int64(107), fee)
}

func TestGrossForNet_ProcessorCutCoversNet(t *testing.T) {
	// Whatever the processor keeps from the gross, at least the net must
	// remain after rate and flat fee are taken out.
	card := FeeModel{Rate: 0.029, Flat: 30}

	for _, net := range []int64{1, 99, 100, 2999, 10000, 123456, 9999999} {
		gross, _ := GrossForNet(net, card)
		kept := gross - int64(float64(gross)*card.Rate) - card.Flat
		assert.GreaterOrEqual(t, kept, net-1, "net %d", net)
	}
}

func TestGrossForNet_ZeroRateAndFlat(t *testing.T) {
	gross, fee := GrossForNet(4200, FeeModel{})
	assert.Equal(t, int64(4200), gross)
	assert.Equal(t, int64(0), fee)
}

func TestGrossForNet_NothingDueNoSurcharge(t *testing.T) {
	// A cart fully covered by store credit charges nothing, so no
	// processor interaction happens and no fee is passed on.
	gross, fee := GrossForNet(0, FeeModel{Rate: 0.029, Flat: 30})
	assert.Equal(t, int64(0), gross)
	assert.Equal(t, int64(0), fee)
}
