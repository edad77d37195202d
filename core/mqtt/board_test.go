package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/docksched/core/model"
)

func TestBuildBoardGroupsByGate(t *testing.T) {
	items := []model.Appointment{
		{ID: "a", GateID: "Brama W5", TimeLabel: "08:00", State: model.StatePending, Operation: model.OperationUnload},
		{ID: "b", GateID: "Brama W1", TimeLabel: "08:15", State: model.StateOnSite, Operation: model.OperationCourier},
		{ID: "c", GateID: "Brama W5", TimeLabel: "09:30", State: model.StatePending, Operation: model.OperationUnload},
	}
	b := BuildBoard("2025-11-20", "edit", items, time.Unix(0, 0))
	require.Len(t, b.Gates, 2)
	assert.Equal(t, "Brama W5", b.Gates[0].GateID)
	require.Len(t, b.Gates[0].Appointments, 2)
	assert.Equal(t, "c", b.Gates[0].Appointments[1].ID)
	assert.Equal(t, "on_site", b.Gates[1].Appointments[0].State)
}

func TestBuildBoardEmpty(t *testing.T) {
	b := BuildBoard("2025-11-20", "", nil, time.Unix(0, 0))
	assert.NotNil(t, b.Gates)
	assert.Empty(t, b.Gates)
}

func TestArrivalValidate(t *testing.T) {
	assert.Error(t, Arrival{ID: "x"}.Validate())
	assert.NoError(t, Arrival{ID: "x", Day: "2025-11-20"}.Validate())
}
