/*
Copyright © 2023 the Tomplot authors.
This file is part of Tomplot.

Tomplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Tomplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Tomplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command tomplot is a command-line interface for plotting LFRic and
// Gusto model output.
package main

import (
	"fmt"
	"os"

	"github.com/tomplot/tomplot/tomplotutil"
)

func main() {
	if err := tomplotutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
