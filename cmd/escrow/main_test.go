// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/escrow/registrar"
)

func testIdentity(b byte) string {
	var ret registrar.Identity
	for i := range ret {
		ret[i] = b
	}
	return ret.String()
}

type cliHarness struct {
	t          *testing.T
	configFile string
}

func newCliHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configFile := filepath.Join(dir, "escrow.yaml")
	content := "databasePath: " + filepath.Join(dir, "db") + "\njournal: true\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))
	return &cliHarness{t: t, configFile: configFile}
}

func (h *cliHarness) run(now int64, args ...string) ([]byte, error) {
	h.t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(
		args,
		"--config", h.configFile,
		"--now", strconv.FormatInt(now, 10),
	))
	err := cmd.Execute()
	return out.Bytes(), err
}

func (h *cliHarness) mustRun(now int64, args ...string) []byte {
	h.t.Helper()
	out, err := h.run(now, args...)
	require.NoError(h.t, err, "%v", args)
	return out
}

func TestParseNow(t *testing.T) {
	clock, err := parseNow("")
	require.NoError(t, err)
	assert.Nil(t, clock)

	clock, err = parseNow("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), clock().Unix())

	clock, err = parseNow("2024-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix(), clock().Unix())

	_, err = parseNow("yesterday")
	require.Error(t, err)
}

func TestCliWorkflow(t *testing.T) {
	const t0 = int64(1_700_000_000)
	const day = int64(86400)
	h := newCliHarness(t)
	registrarArgs := []string{
		"--realm", testIdentity(20),
		"--governing-mint", testIdentity(21),
	}
	voterArgs := append([]string{"--authority", testIdentity(4)}, registrarArgs...)
	withArgs := func(base []string, extra ...string) []string {
		return append(append([]string{}, extra...), base...)
	}

	h.mustRun(t0, withArgs(registrarArgs,
		"registrar", "create",
		"--realm-authority", testIdentity(1),
		"--clawback-authority", testIdentity(2),
	)...)
	_, err := h.run(t0, withArgs(registrarArgs,
		"registrar", "create",
		"--realm-authority", testIdentity(1),
	)...)
	require.Error(t, err)

	out := h.mustRun(t0, withArgs(registrarArgs,
		"registrar", "configure-mint",
		"--signer", testIdentity(1),
		"--mint", testIdentity(10),
		"--max-extra-factor", "1000000000",
		"--saturation-secs", strconv.FormatInt(10*day, 10),
	)...)
	var reg registrar.Registrar
	require.NoError(t, json.Unmarshal(out, &reg))
	assert.Equal(t, testIdentity(10), reg.VotingMints[0].Mint.String())

	h.mustRun(t0, withArgs(voterArgs, "voter", "create")...)
	h.mustRun(t0, withArgs(voterArgs,
		"deposit", "create",
		"--index", "2",
		"--kind", "cliff",
		"--periods", "10",
		"--mint", testIdentity(10),
	)...)
	out = h.mustRun(t0, withArgs(voterArgs,
		"deposit", "add",
		"--index", "2",
		"--amount", "1000",
	)...)
	var status struct {
		AmountDepositedNative uint64 `json:"amountDepositedNative"`
		AmountUnlocked        uint64 `json:"amountUnlocked"`
	}
	require.NoError(t, json.Unmarshal(out, &status))
	assert.Equal(t, uint64(1000), status.AmountDepositedNative)
	assert.Equal(t, uint64(0), status.AmountUnlocked)

	weight := func(now int64) uint64 {
		var resp struct {
			Weight uint64 `json:"weight"`
		}
		out := h.mustRun(now, withArgs(voterArgs, "voter", "weight")...)
		require.NoError(t, json.Unmarshal(out, &resp))
		return resp.Weight
	}
	assert.Equal(t, uint64(2000), weight(t0))
	assert.Equal(t, uint64(1500), weight(t0+5*day))

	_, err = h.run(t0+5*day, withArgs(voterArgs,
		"deposit", "withdraw",
		"--index", "2",
		"--amount", "1",
	)...)
	require.Error(t, err)

	out = h.mustRun(t0, withArgs(voterArgs, "voter", "history", "--limit", "0")...)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(out, &history))
	require.Len(t, history, 3)
	assert.Equal(t, "deposit", history[0]["Operation"])
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), programName)
}
