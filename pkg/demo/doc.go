// Package demo simulates an audio engine whose topology changes over time.
//
// The simulated graph has a permanent drone: a sine whose frequency is
// modulated by a chain of slower sines and ranges, multiplied by a tremolo
// sine and scaled down. Every [Options.VoiceInterval] a voice is started: a
// sine at the next frequency of a 400/600/500 Hz cycle, scaled, shaped by an
// envelope and mixed with a copy of itself through a sample delay. A voice is
// freed, all of its nodes at once, [Options.VoiceLifetime] after it started.
//
// No audio is produced. The engine only maintains the topology and answers
// inspection requests, which makes it a stand-in for a live engine when
// trying out the visualiser.
package demo
