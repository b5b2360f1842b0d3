/*
bio-bqsr runs base quality score recalibration of a BAM file: optional read
group replacement (gatk AddOrReplaceReadGroups), samtools index, gatk
BaseRecalibrator and ApplyBQSR, samtools flagstat, and bamtobigwig.sh.

Usage:

	bio-bqsr run -bam sample.bam -species "Homo sapiens" -build GRCh38 \
	    -reference genome.fasta -known-sites dbsnp.vcf,mills.vcf -dir work
	bio-bqsr run -inputs inputs.json -outputs outputs.json
	bio-bqsr validate-read-group "-ID=1;-LB=lib;-PL=ILLUMINA;-PU=unit;-SM=sample"
	bio-bqsr describe -format yaml
	bio-bqsr flagstat sample.bam

Inputs and outputs use the field names of the process descriptor (see
"bio-bqsr describe"). Input paths may be s3:// URLs; they are staged into
the working directory.
*/
package main
