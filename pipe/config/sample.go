// Copyright 2026 The ddspipe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

const pipeSample = `
# Number of workers transmitting samples. (default 12)
threads = 12

# Create the writers of a participant only while it has readers on a topic.
# (default false)
remove_unused_entities = false

# File path of the pipe description, relative to general.config_dir.
# (default "pipe.yml")
description = "pipe.yml"

# Upper bound for the history depth of every topic. (default 5000)
max_history_depth = 5000
`
