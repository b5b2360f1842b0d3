// Package bamstat inspects BAM files natively: header read groups and a
// clone of 'samtools flagstat'.
package bamstat
