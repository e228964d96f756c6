/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package simtemp

import "math/rand"

const (
	// baselineMC is the fixed baseline the jitter walks around, 40.000 degC.
	baselineMC = 40000
	// jitterRangeMC bounds the per-sample delta to [-500, +500] m degC.
	jitterRangeMC = 500
)

// Generator produces simulated temperature readings: a uniform jitter
// delta added to a fixed baseline. It holds no sensor state; its only
// side effect is consuming entropy from its seeded source.
//
// Not safe for concurrent use. The sampler is the sole caller and invokes
// Next exactly once per cycle.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a seeded generator. Equal seeds produce equal
// reading sequences.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(int64(seed))), //nolint:gosec // simulated readings, not crypto
	}
}

// Next returns the next simulated reading in milli-degrees C.
func (g *Generator) Next() int32 {
	delta := int32(g.rng.Intn(2*jitterRangeMC+1)) - jitterRangeMC
	return baselineMC + delta
}
