// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, Register(registry))

	err := Register(registry)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already, "collectors register once per registry")
}

func TestCollectorsAreNamespaced(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, Register(registry))

	LedgerAppends.WithLabelValues("earn").Inc()
	UnitOfWorkDuration.WithLabelValues("ledger.append").Observe(0.01)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool)
	for _, mf := range families {
		assert.True(t, strings.HasPrefix(mf.GetName(), namespace+"_"), mf.GetName())
		names[mf.GetName()] = true
	}
	assert.True(t, names["gamification_ledger_appends_total"])
	assert.True(t, names["gamification_unit_of_work_duration_seconds"])
}
