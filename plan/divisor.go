// Copyright 2026 kernelplan Authors
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

package plan

// ChooseTileSize picks a tile size for one dimension with bounds [lb, ub),
// preferring the largest multiple of vectorSize not exceeding maxSize that
// divides the trip count evenly.
//
// Dynamic bounds punt to maxSize. Dimensions smaller than one vector are
// taken whole. When no vector multiple divides the trip count, the fallback
// depends on allowIncomplete: if false, the largest plain divisor wins (so
// the result always divides the trip count, down to 1 as the last resort);
// if true, only divisors above half the ceiling are considered before
// accepting maxSize with a runtime boundary tile.
//
// The function is pure and every scan is bounded by maxSize iterations.
func ChooseTileSize(lb, ub, maxSize, vectorSize int64, allowIncomplete bool) int64 {
	if IsDynamic(lb) || IsDynamic(ub) {
		return maxSize
	}
	numIters := ub - lb
	if numIters <= maxSize && numIters < vectorSize {
		return numIters
	}

	ceiling := min(maxSize, numIters)
	if ceiling <= 0 {
		return maxSize
	}
	if vectorSize > 0 {
		for i := ceiling / vectorSize * vectorSize; i >= vectorSize; i -= vectorSize {
			if numIters%i == 0 {
				return i
			}
		}
	}

	if allowIncomplete {
		// Only go down to half the ceiling; smaller exact divisors would
		// produce too many work units.
		for i := ceiling; i >= ceiling/2; i-- {
			if numIters%i == 0 {
				return i
			}
		}
		return maxSize
	}

	for i := ceiling; i > 1; i-- {
		if numIters%i == 0 {
			return i
		}
	}
	return 1
}
