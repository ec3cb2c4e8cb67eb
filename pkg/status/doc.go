/*
Package status renders logfix results for the terminal.

	+-------------+      +-------------+      +-------------+
	|  Step rows  |      |   Report    |      |    Plan     |
	|  (fixer)    |      |  (verify)   |      |   (plan)    |
	+------+------+      +------+------+      +------+------+
	       |                    |                    |
	       +--------------------+--------------------+
	                            |
	                     +------+------+
	                     |  Formatter  |
	                     |   (pterm)   |
	                     +-------------+

🎯 Purpose:
- Shows which rules and insertions applied, were already applied, or missed
- Lists leftover lines found by the verifier
- Describes the active plan

The formatter only produces strings; callers decide where they are written.
*/
package status
