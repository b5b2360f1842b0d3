/*Package interval checks BED interval files before they are handed to
  tools that restrict computation to genomic regions.
  Coordinates are zero-based, half-open; an interval with start == end is
  empty but legal.
*/
package interval
