// Copyright 2025 samber.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/samber/ro/blob/main/licenses/LICENSE.apache.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rxwindow re-chunks an asynchronous sequence of values into a
// sequence of smaller asynchronous subsequences, each itself a Publisher.
// Three strategies are selected by comparing size against skip: Exact
// (skip == size) yields contiguous, non-overlapping windows; Skip
// (skip > size) yields gapped windows with dropped elements between them;
// Overlap (skip < size) keeps up to ceil(size/skip) windows open at once.
//
// Every signal path honors reactive-streams-style demand: Request(n) on a
// Subscription asks for up to n more elements (or windows), and Cancel()
// asks the source to stop. Window itself is demand-aware in both
// directions — toward the upstream Publisher it re-chunks, and toward the
// outer Observer that consumes the stream of windows.
package rxwindow
